package repository

import (
	"context"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/model"
)

// BookingRepo persists the ordered booking list under KeyBookings.
type BookingRepo struct{ store *kvstore.Store }

func NewBookingRepo(s *kvstore.Store) *BookingRepo { return &BookingRepo{store: s} }

// List returns every booking in insertion order.
func (r *BookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	ok, err := r.store.Read(ctx, KeyBookings, &bookings)
	if err != nil || !ok {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepo) SaveAll(ctx context.Context, bookings []model.Booking) error {
	if bookings == nil {
		bookings = []model.Booking{}
	}
	return r.store.Write(ctx, KeyBookings, bookings)
}

// Insert appends b as given; id and timestamps are the caller's job.
func (r *BookingRepo) Insert(ctx context.Context, b model.Booking) error {
	bookings, err := r.List(ctx)
	if err != nil {
		return err
	}
	return r.SaveAll(ctx, append(bookings, b))
}

// GetByID returns the booking with id, if any.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.Booking, bool, error) {
	bookings, err := r.List(ctx)
	if err != nil {
		return model.Booking{}, false, err
	}
	for _, b := range bookings {
		if b.ID == id {
			return b, true, nil
		}
	}
	return model.Booking{}, false, nil
}

// ListForUser returns the bookings whose UserID equals userID exactly.
func (r *BookingRepo) ListForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	bookings, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.OwnedBy(userID) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Modify applies fn to booking id and persists the result.  It returns the
// booking before and after the change; found is false (and nothing is
// written) when no booking has that id.
func (r *BookingRepo) Modify(ctx context.Context, id string, fn func(*model.Booking)) (before, after model.Booking, found bool, err error) {
	bookings, err := r.List(ctx)
	if err != nil {
		return before, after, false, err
	}
	for i := range bookings {
		if bookings[i].ID != id {
			continue
		}
		before = bookings[i]
		fn(&bookings[i])
		if err := r.SaveAll(ctx, bookings); err != nil {
			return before, after, true, err
		}
		return before, bookings[i], true, nil
	}
	return before, after, false, nil
}

// Delete removes booking id and reports whether anything was removed.
func (r *BookingRepo) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.deleteWhere(ctx, func(b model.Booking) bool { return b.ID == id })
	return n > 0, err
}

// DeleteForUser removes every booking owned by userID and returns how many
// went away.
func (r *BookingRepo) DeleteForUser(ctx context.Context, userID string) (int, error) {
	return r.deleteWhere(ctx, func(b model.Booking) bool { return b.OwnedBy(userID) })
}

func (r *BookingRepo) deleteWhere(ctx context.Context, drop func(model.Booking) bool) (int, error) {
	bookings, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	kept := bookings[:0]
	for _, b := range bookings {
		if !drop(b) {
			kept = append(kept, b)
		}
	}
	removed := len(bookings) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, r.SaveAll(ctx, kept)
}
