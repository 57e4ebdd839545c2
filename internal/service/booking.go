package service

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/logger"
	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/queue"
	"github.com/iliyamo/cleaning-booking/internal/repository"
	"github.com/iliyamo/cleaning-booking/internal/utils"
)

// BookingService is the booking CRUD layer.  When Events is set, creates,
// status changes and deletes are published after they are persisted.
type BookingService struct {
	store    *kvstore.Store
	bookings *repository.BookingRepo
	log      logrus.FieldLogger

	Events EventPublisher
	Now    func() time.Time
}

func NewBookingService(store *kvstore.Store, events EventPublisher, log logrus.FieldLogger) *BookingService {
	return &BookingService{
		store:    store,
		bookings: repository.NewBookingRepo(store),
		log:      logger.OrStandard(log).WithField("component", "bookings"),
		Events:   events,
		Now:      time.Now,
	}
}

// Create stamps b with a fresh id and creation time, defaults its status to
// pending, drops the field group of the other property type and stores it.
func (s *BookingService) Create(ctx context.Context, b model.Booking) (model.Booking, error) {
	b.ID = utils.NewID()
	b.CreatedAt = s.Now().UTC()
	b.Status = b.Status.OrPending()
	b.ClearOtherGroup()

	err := s.store.Exclusive(func() error { return s.bookings.Insert(ctx, b) })
	if err != nil {
		return model.Booking{}, err
	}
	s.log.WithField("booking_id", b.ID).Info("booking created")
	s.publish(ctx, queue.BookingCreated, b, "")
	return b, nil
}

// GetByID returns the booking with id; ok is false when there is none.
func (s *BookingService) GetByID(ctx context.Context, id string) (model.Booking, bool, error) {
	return s.bookings.GetByID(ctx, id)
}

// ListForUser returns the bookings owned by userID, in creation order.
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.bookings.ListForUser(ctx, userID)
}

// ListAll returns every booking in creation order.
func (s *BookingService) ListAll(ctx context.Context) ([]model.Booking, error) {
	return s.bookings.List(ctx)
}

// List returns the bookings matching f, newest first.
func (s *BookingService) List(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	all, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Booking, 0, len(all))
	for _, b := range all {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update merges p over booking id and persists the result.  ok is false,
// and nothing is written, when the booking does not exist.
func (s *BookingService) Update(ctx context.Context, id string, p model.BookingPatch) (model.Booking, bool, error) {
	var before, after model.Booking
	var found bool
	err := s.store.Exclusive(func() error {
		var err error
		before, after, found, err = s.bookings.Modify(ctx, id, p.ApplyTo)
		return err
	})
	if err != nil || !found {
		return model.Booking{}, found, err
	}
	if prev := before.Status.OrPending(); prev != after.Status.OrPending() {
		s.publish(ctx, queue.BookingStatusChanged, after, string(prev))
	}
	return after, true, nil
}

// SetStatus is Update restricted to the status field.
func (s *BookingService) SetStatus(ctx context.Context, id string, status model.Status) (model.Booking, bool, error) {
	return s.Update(ctx, id, model.BookingPatch{Status: model.Some(status)})
}

// Delete removes booking id and reports whether it existed.
func (s *BookingService) Delete(ctx context.Context, id string) (bool, error) {
	var gone model.Booking
	var found bool
	err := s.store.Exclusive(func() error {
		var err error
		if gone, found, err = s.bookings.GetByID(ctx, id); err != nil || !found {
			return err
		}
		found, err = s.bookings.Delete(ctx, id)
		return err
	})
	if err != nil || !found {
		return false, err
	}
	s.log.WithField("booking_id", id).Info("booking deleted")
	s.publish(ctx, queue.BookingDeleted, gone, "")
	return true, nil
}

// Stats recomputes the dashboard counters from the stored bookings.
func (s *BookingService) Stats(ctx context.Context) (model.BookingStats, error) {
	all, err := s.bookings.List(ctx)
	if err != nil {
		return model.BookingStats{}, err
	}
	return ComputeBookingStats(all), nil
}

func (s *BookingService) publish(ctx context.Context, typ queue.EventType, b model.Booking, prev string) {
	if s.Events == nil {
		return
	}
	ev := queue.BookingEvent{
		Type:           typ,
		BookingID:      b.ID,
		Email:          b.Email,
		PropertyType:   string(b.PropertyType),
		Status:         string(b.Status.OrPending()),
		PreviousStatus: prev,
		OccurredAt:     s.Now().UTC(),
	}
	if b.UserID != nil {
		ev.UserID = *b.UserID
	}
	if b.PreferredDate != nil {
		ev.PreferredDate = *b.PreferredDate
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Events.Publish(ctx, ev); err != nil {
		s.log.WithField("booking_id", b.ID).Warnf("event %s not published: %v", typ, err)
	}
}
