package repository

import (
	"context"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/model"
)

// SignupRepo keeps the append-only signup log.  Records are never updated
// or removed, not even when their user is deleted.
type SignupRepo struct{ store *kvstore.Store }

func NewSignupRepo(s *kvstore.Store) *SignupRepo { return &SignupRepo{store: s} }

func (r *SignupRepo) List(ctx context.Context) ([]model.Signup, error) {
	var signups []model.Signup
	ok, err := r.store.Read(ctx, KeySignups, &signups)
	if err != nil || !ok {
		return nil, err
	}
	return signups, nil
}

func (r *SignupRepo) Append(ctx context.Context, s model.Signup) error {
	signups, err := r.List(ctx)
	if err != nil {
		return err
	}
	return r.store.Write(ctx, KeySignups, append(signups, s))
}
