package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/queue"
	"github.com/iliyamo/cleaning-booking/internal/repository"
)

func residential() model.Booking {
	return model.Booking{
		PropertyType: model.Residential,
		Name:         "Jane",
		Email:        "jane@example.com",
		Complexity:   "Simple",
		HomeSize:     ptr("3-4 bedrooms"),
		Bedrooms:     ptr(3),
		Bathrooms:    ptr(2),
		BusinessName: ptr("stale"),
	}
}

func TestCreateStampsAndPublishes(t *testing.T) {
	ctx := context.Background()
	store, log, _ := newTestStore(t, nil)
	pub := &recordingPublisher{}
	svc := NewBookingService(store, pub, log)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	b, err := svc.Create(ctx, residential())
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, now, b.CreatedAt)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Nil(t, b.BusinessName)

	got, ok, err := svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b, got)

	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.BookingCreated, pub.events[0].Type)
	assert.Equal(t, b.ID, pub.events[0].BookingID)
	assert.Empty(t, pub.events[0].UserID)
}

func TestCreateSurvivesPublisherFailure(t *testing.T) {
	store, log, hook := newTestStore(t, nil)
	svc := NewBookingService(store, &recordingPublisher{err: errors.New("broker down")}, log)

	_, err := svc.Create(context.Background(), residential())
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "broker down")
}

func TestCreateStorageFailure(t *testing.T) {
	mem := kvstore.NewMemory()
	mem.Quota = 16
	store, log, _ := newTestStore(t, mem)
	pub := &recordingPublisher{}
	svc := NewBookingService(store, pub, log)

	_, err := svc.Create(context.Background(), residential())
	assert.ErrorIs(t, err, repository.ErrStorageFailure)
	assert.Empty(t, pub.events)
}

func TestUpdateSwitchesPropertyType(t *testing.T) {
	ctx := context.Background()
	store, log, _ := newTestStore(t, nil)
	svc := NewBookingService(store, nil, log)
	b, err := svc.Create(ctx, residential())
	require.NoError(t, err)

	got, ok, err := svc.Update(ctx, b.ID, model.BookingPatch{
		PropertyType: model.Some(model.Commercial),
		BusinessName: model.Some("Acme"),
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.Commercial, got.PropertyType)
	require.NotNil(t, got.BusinessName)
	assert.Equal(t, "Acme", *got.BusinessName)
	assert.Nil(t, got.HomeSize)
	assert.Nil(t, got.Bedrooms)
	assert.Nil(t, got.Bathrooms)

	stored, _, err := svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestUpdateNullClearsAndMissingKeeps(t *testing.T) {
	ctx := context.Background()
	store, log, _ := newTestStore(t, nil)
	svc := NewBookingService(store, nil, log)
	in := residential()
	in.Phone = ptr("555-0100")
	in.Address = ptr("1 Main St")
	b, err := svc.Create(ctx, in)
	require.NoError(t, err)

	got, ok, err := svc.Update(ctx, b.ID, model.BookingPatch{Phone: model.Null[string]()})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got.Phone)
	require.NotNil(t, got.Address)
	assert.Equal(t, "1 Main St", *got.Address)
	assert.Equal(t, b.CreatedAt, got.CreatedAt)
}

func TestUpdateMissingBooking(t *testing.T) {
	store, log, _ := newTestStore(t, nil)
	svc := NewBookingService(store, nil, log)

	got, ok, err := svc.Update(context.Background(), "nope", model.BookingPatch{Name: model.Some("x")})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, got)
}

func TestStatusChangesAreUnconstrainedAndPublished(t *testing.T) {
	ctx := context.Background()
	store, log, _ := newTestStore(t, nil)
	pub := &recordingPublisher{}
	svc := NewBookingService(store, pub, log)
	b, err := svc.Create(ctx, residential())
	require.NoError(t, err)

	for _, st := range []model.Status{model.StatusCancelled, model.StatusConfirmed, model.StatusCompleted} {
		got, ok, err := svc.SetStatus(ctx, b.ID, st)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, st, got.Status)
	}
	_, _, err = svc.Update(ctx, b.ID, model.BookingPatch{Name: model.Some("Janet")})
	require.NoError(t, err)

	require.Len(t, pub.events, 4)
	last := pub.events[3]
	assert.Equal(t, queue.BookingStatusChanged, last.Type)
	assert.Equal(t, "completed", last.Status)
	assert.Equal(t, "confirmed", last.PreviousStatus)
}

func TestDeleteBooking(t *testing.T) {
	ctx := context.Background()
	store, log, _ := newTestStore(t, nil)
	pub := &recordingPublisher{}
	svc := NewBookingService(store, pub, log)
	b, err := svc.Create(ctx, residential())
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = svc.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	require.Len(t, pub.events, 2)
	assert.Equal(t, queue.BookingDeleted, pub.events[1].Type)
}

func TestListFiltersNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, log, _ := newTestStore(t, nil)
	svc := NewBookingService(store, nil, log)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	first, err := svc.Create(ctx, residential())
	require.NoError(t, err)
	second, err := svc.Create(ctx, model.Booking{PropertyType: model.Commercial, Email: "c@example.com"})
	require.NoError(t, err)
	third, err := svc.Create(ctx, residential())
	require.NoError(t, err)
	_, _, err = svc.SetStatus(ctx, third.ID, model.StatusConfirmed)
	require.NoError(t, err)

	// a record written before status existed counts as pending
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	all[0].Status = ""
	require.NoError(t, repository.NewBookingRepo(store).SaveAll(ctx, all))

	pending, err := svc.List(ctx, model.BookingFilter{Status: model.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, second.ID, pending[0].ID)
	assert.Equal(t, first.ID, pending[1].ID)

	res, err := svc.List(ctx, model.BookingFilter{PropertyType: model.Residential})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, third.ID, res[0].ID)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store, log, _ := newTestStore(t, nil)
	svc := NewBookingService(store, nil, log)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st)

	_, err = svc.Create(ctx, residential())
	require.NoError(t, err)
	st, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStats{Total: 1, Pending: 1, Residential: 1}, st)
}
