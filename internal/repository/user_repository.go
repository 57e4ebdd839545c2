package repository

import (
	"context"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/model"
)

// UserRepo persists the ordered user list under KeyUsers.  Methods that
// modify the list read it, change it and write it back whole; callers that
// need atomicity wrap them in kvstore.Store.Exclusive.
type UserRepo struct{ store *kvstore.Store }

func NewUserRepo(s *kvstore.Store) *UserRepo { return &UserRepo{store: s} }

// List returns every user in insertion order.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	ok, err := r.store.Read(ctx, KeyUsers, &users)
	if err != nil || !ok {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) SaveAll(ctx context.Context, users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	return r.store.Write(ctx, KeyUsers, users)
}

// GetByEmail fetches a user by case-insensitive email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, bool, error) {
	users, err := r.List(ctx)
	if err != nil {
		return model.User{}, false, err
	}
	if i := indexByEmail(users, email); i >= 0 {
		return users[i], true, nil
	}
	return model.User{}, false, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, bool, error) {
	users, err := r.List(ctx)
	if err != nil {
		return model.User{}, false, err
	}
	if i := indexByID(users, id); i >= 0 {
		return users[i], true, nil
	}
	return model.User{}, false, nil
}

// Insert appends u, failing with ErrDuplicateUser when the email is taken.
func (r *UserRepo) Insert(ctx context.Context, u model.User) error {
	users, err := r.List(ctx)
	if err != nil {
		return err
	}
	if indexByEmail(users, u.Email) >= 0 {
		return ErrDuplicateUser
	}
	return r.SaveAll(ctx, append(users, u))
}

// SetRole changes the stored role of user id.
func (r *UserRepo) SetRole(ctx context.Context, id string, role model.Role) (model.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return model.User{}, err
	}
	i := indexByID(users, id)
	if i < 0 {
		return model.User{}, ErrUserNotFound
	}
	users[i].Role = role
	if err := r.SaveAll(ctx, users); err != nil {
		return model.User{}, err
	}
	return users[i], nil
}

// Delete removes user id and reports whether it existed.
func (r *UserRepo) Delete(ctx context.Context, id string) (bool, error) {
	users, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	i := indexByID(users, id)
	if i < 0 {
		return false, nil
	}
	users = append(users[:i], users[i+1:]...)
	return true, r.SaveAll(ctx, users)
}

func indexByEmail(users []model.User, email string) int {
	for i, u := range users {
		if model.SameEmail(u.Email, email) {
			return i
		}
	}
	return -1
}

func indexByID(users []model.User, id string) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
