// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import "time"

// BookingQueueName is the durable queue booking events are published to.
const BookingQueueName = "booking.events"

// EventType names what happened to a booking.
type EventType string

const (
	BookingCreated       EventType = "booking.created"
	BookingStatusChanged EventType = "booking.status_changed"
	BookingDeleted       EventType = "booking.deleted"
)

// BookingEvent is published after a booking write has been persisted.  It
// carries enough for downstream consumers to log or notify without reading
// the store.
type BookingEvent struct {
	Type           EventType `json:"type"`
	BookingID      string    `json:"booking_id"`
	UserID         string    `json:"user_id,omitempty"` // empty for guest bookings
	Email          string    `json:"email"`
	PropertyType   string    `json:"property_type"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	PreferredDate  string    `json:"preferred_date,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
