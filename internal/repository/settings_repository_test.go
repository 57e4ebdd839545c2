package repository

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/model"
)

func newStore(t *testing.T) (*kvstore.Store, *kvstore.Memory) {
	t.Helper()
	mem := kvstore.NewMemory()
	log, _ := test.NewNullLogger()
	return kvstore.New(mem, "cttm", log), mem
}

func TestFormConfigDefaultsAndReset(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	repo := NewFormConfigRepo(store)

	cfg, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFormConfig(), cfg)

	cfg.Complexity.Label = "Difficulty"
	require.NoError(t, repo.Save(ctx, cfg))

	reset, err := repo.Reset(ctx)
	require.NoError(t, err)
	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFormConfig(), got)
	assert.Equal(t, reset, got)
}

func TestFormConfigSaveIsFullReplace(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	repo := NewFormConfigRepo(store)

	cfg := model.FormConfig{
		FieldLabels: map[string]string{"name": "Your name"},
		Complexity: model.SelectField{
			Label:   "Level",
			Options: []model.Option{{Value: "easy", Label: "Easy"}},
		},
		HomeSize:   model.SelectField{Label: "Size", Required: true, Options: []model.Option{}},
		OfficeType: model.SelectField{Label: "Kind", Options: []model.Option{{Value: "o", Label: "Office"}}},
	}
	require.NoError(t, repo.Save(ctx, cfg))
	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestFormConfigCorruptFallsBackToDefault(t *testing.T) {
	store, mem := newStore(t)
	mem.Raw("cttm_formConfig", "<html>")

	got, err := NewFormConfigRepo(store).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFormConfig(), got)
}

func TestFormConfigNullFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	store, mem := newStore(t)
	mem.Raw("cttm_formConfig", "null")
	mem.Raw("cttm_navigationSettings", "null")

	got, err := NewFormConfigRepo(store).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFormConfig(), got)

	nav, err := NewNavigationRepo(store).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.NavigationSettings{}, nav)
}

func TestNavigationSettings(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	repo := NewNavigationRepo(store)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.False(t, got.ShowMembership)

	require.NoError(t, repo.Save(ctx, model.NavigationSettings{ShowMembership: true}))
	got, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.ShowMembership)
}

func TestSessionPointer(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	repo := NewSessionRepo(store)

	_, ok, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "u1"))
	id, ok, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	require.NoError(t, repo.Clear(ctx))
	_, ok, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepoUniqueness(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	repo := NewUserRepo(store)

	require.NoError(t, repo.Insert(ctx, model.User{ID: "1", Email: "a@example.com"}))
	assert.ErrorIs(t, repo.Insert(ctx, model.User{ID: "2", Email: "A@EXAMPLE.com"}), ErrDuplicateUser)

	u, ok, err := repo.GetByEmail(ctx, "A@example.COM")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", u.ID)

	_, err = repo.SetRole(ctx, "9", model.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
