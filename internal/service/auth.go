// Package service holds the booking core: accounts and sessions, bookings,
// the statistics derived from them and the calendar index.  Services own
// locking; every read-modify-write runs inside kvstore.Store.Exclusive.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/logger"
	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/repository"
	"github.com/iliyamo/cleaning-booking/internal/utils"
)

// AuthConfig carries the settings AuthService needs from config.Config.
type AuthConfig struct {
	AdminEmail string         // owner of this address is always an admin
	BcryptCost int            // password hashing cost
	Location   *time.Location // zone that decides "today" in UserStats
}

// AuthService manages user accounts, password checks, the session pointer
// and the admin self-heal.
type AuthService struct {
	store    *kvstore.Store
	users    *repository.UserRepo
	bookings *repository.BookingRepo
	signups  *repository.SignupRepo
	session  *repository.SessionRepo
	cfg      AuthConfig
	log      logrus.FieldLogger

	// Now is the clock used for timestamps and signup windows.
	Now func() time.Time
}

func NewAuthService(store *kvstore.Store, cfg AuthConfig, log logrus.FieldLogger) *AuthService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &AuthService{
		store:    store,
		users:    repository.NewUserRepo(store),
		bookings: repository.NewBookingRepo(store),
		signups:  repository.NewSignupRepo(store),
		session:  repository.NewSessionRepo(store),
		cfg:      cfg,
		log:      logger.OrStandard(log).WithField("component", "auth"),
		Now:      time.Now,
	}
}

// NormalizeAdminRole returns u with the admin role forced on when its email
// is adminEmail.  The bool reports whether anything changed.
func NormalizeAdminRole(u model.User, adminEmail string) (model.User, bool) {
	if adminEmail == "" || !model.SameEmail(u.Email, adminEmail) || u.Role == model.RoleAdmin {
		return u, false
	}
	u.Role = model.RoleAdmin
	return u, true
}

// heal normalizes u and persists the correction when one was needed.  A
// failed correction is logged; the caller still gets the corrected user and
// the next read tries again.
func (s *AuthService) heal(ctx context.Context, u model.User) model.User {
	u, changed := NormalizeAdminRole(u, s.cfg.AdminEmail)
	if !changed {
		return u
	}
	err := s.store.Exclusive(func() error {
		_, err := s.users.SetRole(ctx, u.ID, model.RoleAdmin)
		return err
	})
	if err != nil {
		s.log.WithField("user_id", u.ID).Warnf("admin role correction not persisted: %v", err)
	} else {
		s.log.WithField("user_id", u.ID).Info("restored admin role")
	}
	return u
}

// CreateUser registers a new account.  An empty role means admin for the
// admin address and user otherwise; the admin address always ends up admin.
// The signup record is best effort: failing to write it does not fail the
// signup.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password string, role model.Role) (model.User, error) {
	if role != "" && !role.Valid() {
		return model.User{}, repository.ErrInvalidRole
	}
	if role == "" {
		role = model.RoleUser
	}
	email = strings.TrimSpace(email)

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.Now().UTC(),
	}
	u, _ = NormalizeAdminRole(u, s.cfg.AdminEmail)

	err = s.store.Exclusive(func() error {
		if err := s.users.Insert(ctx, u); err != nil {
			return err
		}
		sig := model.Signup{UserID: u.ID, Email: u.Email, Timestamp: u.CreatedAt}
		if err := s.signups.Append(ctx, sig); err != nil {
			s.log.WithField("user_id", u.ID).Warnf("signup record dropped: %v", err)
		}
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user created")
	return u, nil
}

// Authenticate checks an email and password.  Unknown email and wrong
// password both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, ok, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		utils.BurnPasswordCheck(password)
		return model.User{}, repository.ErrInvalidCredentials
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, repository.ErrInvalidCredentials
	}
	return s.heal(ctx, u), nil
}

// CurrentUser resolves the session pointer.  ok is false when nobody is
// signed in or the pointer names a user that no longer exists.
func (s *AuthService) CurrentUser(ctx context.Context) (model.User, bool, error) {
	id, ok, err := s.session.Get(ctx)
	if err != nil || !ok {
		return model.User{}, false, err
	}
	return s.UserByID(ctx, id)
}

// SetCurrentUser points the session at user id.
func (s *AuthService) SetCurrentUser(ctx context.Context, id string) error {
	_, ok, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrUserNotFound
	}
	return s.session.Set(ctx, id)
}

func (s *AuthService) SignOut(ctx context.Context) error {
	return s.session.Clear(ctx)
}

// UserByID looks a user up, applying the admin self-heal.
func (s *AuthService) UserByID(ctx context.Context, id string) (model.User, bool, error) {
	u, ok, err := s.users.GetByID(ctx, id)
	if err != nil || !ok {
		return model.User{}, false, err
	}
	return s.heal(ctx, u), true, nil
}

// UpdateRole sets the role of user id.  Demoting the admin address is
// overridden: the stored role stays admin.
func (s *AuthService) UpdateRole(ctx context.Context, id string, role model.Role) (model.User, error) {
	if !role.Valid() {
		return model.User{}, repository.ErrInvalidRole
	}
	var out model.User
	err := s.store.Exclusive(func() error {
		u, ok, err := s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return repository.ErrUserNotFound
		}
		u.Role = role
		u, _ = NormalizeAdminRole(u, s.cfg.AdminEmail)
		out, err = s.users.SetRole(ctx, id, u.Role)
		return err
	})
	if err != nil {
		return model.User{}, err
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "role": out.Role}).Info("role updated")
	return out, nil
}

// DeleteUser removes user id together with every booking it owns.  It
// reports whether the user existed.
func (s *AuthService) DeleteUser(ctx context.Context, id string) (bool, error) {
	var found bool
	var removed int
	err := s.store.Exclusive(func() error {
		var err error
		if found, err = s.users.Delete(ctx, id); err != nil || !found {
			return err
		}
		removed, err = s.bookings.DeleteForUser(ctx, id)
		return err
	})
	if err != nil {
		return found, err
	}
	if found {
		s.log.WithFields(logrus.Fields{"user_id": id, "bookings_removed": removed}).Info("user deleted")
	}
	return found, nil
}

// ListUsers returns every user, roles normalized.  Nothing is written.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i], _ = NormalizeAdminRole(users[i], s.cfg.AdminEmail)
	}
	return users, nil
}

// UserStats counts accounts by role and recent signups.
func (s *AuthService) UserStats(ctx context.Context) (model.UserStats, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return model.UserStats{}, err
	}
	signups, err := s.signups.List(ctx)
	if err != nil {
		return model.UserStats{}, err
	}
	return ComputeUserStats(users, signups, s.Now(), s.cfg.Location), nil
}

// RecentSignups returns the n most recently logged signups, newest first.
func (s *AuthService) RecentSignups(ctx context.Context, n int) ([]model.RecentSignup, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	signups, err := s.signups.List(ctx)
	if err != nil {
		return nil, err
	}
	return RecentSignups(users, signups, n), nil
}

// EnsureAdminUser corrects the stored role of the admin address, if such
// an account exists.  It reports whether a correction was written.
func (s *AuthService) EnsureAdminUser(ctx context.Context) (bool, error) {
	var fixed bool
	err := s.store.Exclusive(func() error {
		u, ok, err := s.users.GetByEmail(ctx, s.cfg.AdminEmail)
		if err != nil || !ok || s.cfg.AdminEmail == "" {
			return err
		}
		if _, fixed = NormalizeAdminRole(u, s.cfg.AdminEmail); !fixed {
			return nil
		}
		_, err = s.users.SetRole(ctx, u.ID, model.RoleAdmin)
		return err
	})
	if err != nil {
		return false, err
	}
	return fixed, nil
}
