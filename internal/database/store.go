package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cleaning-booking/internal/config"
	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/logger"
)

// OpenStore builds the keyed store selected by STORE_BACKEND.  rdb is the
// shared Redis client and may be nil unless the redis backend is chosen.
// The returned func releases whatever the backend opened.
func OpenStore(cfg config.Config, rdb *redis.Client, log logrus.FieldLogger) (*kvstore.Store, func(), error) {
	noop := func() {}
	log = logger.OrStandard(log)
	switch cfg.StoreBackend {
	case "", "memory":
		log.Warn("store: using in-memory backend; data is lost on exit")
		return kvstore.New(kvstore.NewMemory(), cfg.StorePrefix, log), noop, nil
	case "redis":
		if rdb == nil {
			return nil, noop, fmt.Errorf("store: redis backend selected but redis is unreachable")
		}
		return kvstore.New(kvstore.NewRedis(rdb), cfg.StorePrefix, log), noop, nil
	case "mysql":
		db, err := Open(cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("store: mysql: %w", err)
		}
		backend := kvstore.NewMySQL(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := backend.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("store: mysql schema: %w", err)
		}
		return kvstore.New(backend, cfg.StorePrefix, log), func() { _ = db.Close() }, nil
	}
	return nil, noop, fmt.Errorf("store: unknown STORE_BACKEND %q (want memory, redis or mysql)", cfg.StoreBackend)
}
