package repository

import (
	"context"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/model"
)

// FormConfigRepo holds the intake-form configuration singleton.  Save
// trusts its input: the caller builds a complete configuration and it is
// stored as-is, replacing whatever was there.
type FormConfigRepo struct{ store *kvstore.Store }

func NewFormConfigRepo(s *kvstore.Store) *FormConfigRepo { return &FormConfigRepo{store: s} }

// Get returns the stored configuration, or the default when none is stored
// or the stored document is unreadable.
func (r *FormConfigRepo) Get(ctx context.Context) (model.FormConfig, error) {
	var cfg model.FormConfig
	ok, err := r.store.Read(ctx, KeyFormConfig, &cfg)
	if err != nil {
		return model.FormConfig{}, err
	}
	if !ok {
		return model.DefaultFormConfig(), nil
	}
	return cfg, nil
}

func (r *FormConfigRepo) Save(ctx context.Context, cfg model.FormConfig) error {
	return r.store.Write(ctx, KeyFormConfig, cfg)
}

// Reset stores and returns the default configuration.
func (r *FormConfigRepo) Reset(ctx context.Context) (model.FormConfig, error) {
	cfg := model.DefaultFormConfig()
	if err := r.Save(ctx, cfg); err != nil {
		return model.FormConfig{}, err
	}
	return cfg, nil
}

// NavigationRepo holds the navigation settings singleton.
type NavigationRepo struct{ store *kvstore.Store }

func NewNavigationRepo(s *kvstore.Store) *NavigationRepo { return &NavigationRepo{store: s} }

// Get returns the stored settings; absent or unreadable settings are all
// defaults (membership link hidden).
func (r *NavigationRepo) Get(ctx context.Context) (model.NavigationSettings, error) {
	var s model.NavigationSettings
	ok, err := r.store.Read(ctx, KeyNavigationSettings, &s)
	if err != nil {
		return model.NavigationSettings{}, err
	}
	if !ok {
		return model.NavigationSettings{}, nil
	}
	return s, nil
}

func (r *NavigationRepo) Save(ctx context.Context, s model.NavigationSettings) error {
	return r.store.Write(ctx, KeyNavigationSettings, s)
}
