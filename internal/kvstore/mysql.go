package kvstore

import (
	"context"
	"database/sql"
	"errors"
)

// MySQL keeps documents in a two-column kv_store table.  The table is
// created by EnsureSchema.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

// EnsureSchema creates the kv_store table when it does not exist yet.
func (m *MySQL) EnsureSchema(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS kv_store (
		k VARCHAR(191) NOT NULL PRIMARY KEY,
		v LONGBLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
	_, err := m.db.ExecContext(ctx, q)
	return err
}

func (m *MySQL) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := m.db.QueryRowContext(ctx, "SELECT v FROM kv_store WHERE k=? LIMIT 1", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

func (m *MySQL) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.db.ExecContext(ctx,
		"INSERT INTO kv_store (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v=VALUES(v)",
		key, value)
	return err
}

func (m *MySQL) Delete(ctx context.Context, key string) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM kv_store WHERE k=?", key)
	return err
}
