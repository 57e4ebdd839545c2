package repository

import (
	"context"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
)

// SessionRepo stores the id of the signed-in user for single-user clients.
// It is a pointer into the user list, not a credential.
type SessionRepo struct{ store *kvstore.Store }

func NewSessionRepo(s *kvstore.Store) *SessionRepo { return &SessionRepo{store: s} }

// Get returns the stored user id; ok is false when nobody is signed in.
func (r *SessionRepo) Get(ctx context.Context) (string, bool, error) {
	var id string
	ok, err := r.store.Read(ctx, KeyCurrentUser, &id)
	if err != nil || !ok || id == "" {
		return "", false, err
	}
	return id, true, nil
}

func (r *SessionRepo) Set(ctx context.Context, userID string) error {
	return r.store.Write(ctx, KeyCurrentUser, userID)
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	return r.store.Remove(ctx, KeyCurrentUser)
}
