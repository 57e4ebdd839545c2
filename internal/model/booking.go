package model

import "time"

// PropertyType selects which property-specific field group a booking uses.
type PropertyType string

const (
	Residential PropertyType = "residential"
	Commercial  PropertyType = "commercial"
)

// Status is the lifecycle state of a booking.  Any status may follow any
// other; there is no transition table.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists the known statuses in display order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// OrPending returns s, or pending when s is empty.  Records written before
// status existed carry no status and count as pending everywhere.
func (s Status) OrPending() Status {
	if s == "" {
		return StatusPending
	}
	return s
}

// Booking is a cleaning request.  Optional values are pointers so that an
// explicit null in the stored document stays distinguishable from a value.
// Exactly one of the residential group (HomeSize, Bedrooms, Bathrooms) and
// the commercial group (BusinessName, OfficeType, NumberOfFloors,
// NumberOfEmployees) is populated; see ClearOtherGroup.
type Booking struct {
	ID             string       `json:"id"`
	UserID         *string      `json:"userId"` // nil for guest bookings
	PropertyType   PropertyType `json:"propertyType"`
	Name           string       `json:"name,omitempty"`
	Email          string       `json:"email"`
	Phone          *string      `json:"phone"`
	Address        *string      `json:"address"`
	Complexity     string       `json:"complexity"`
	Status         Status       `json:"status,omitempty"`
	PreferredDate  *string      `json:"preferredDate"`
	AdditionalInfo *string      `json:"additionalInfo"`
	CreatedAt      time.Time    `json:"createdAt"`
	SquareFootage  *int         `json:"squareFootage"`

	// residential
	HomeSize  *string `json:"homeSize,omitempty"`
	Bedrooms  *int    `json:"bedrooms,omitempty"`
	Bathrooms *int    `json:"bathrooms,omitempty"`

	// commercial
	BusinessName      *string `json:"businessName,omitempty"`
	OfficeType        *string `json:"officeType,omitempty"`
	NumberOfFloors    *int    `json:"numberOfFloors,omitempty"`
	NumberOfEmployees *int    `json:"numberOfEmployees,omitempty"`
}

// OwnedBy reports whether the booking belongs to userID.
func (b Booking) OwnedBy(userID string) bool {
	return b.UserID != nil && *b.UserID == userID
}

// ClearOtherGroup nulls the field group that does not belong to the
// booking's property type.  Unknown property types are left untouched.
func (b *Booking) ClearOtherGroup() {
	switch b.PropertyType {
	case Residential:
		b.BusinessName = nil
		b.OfficeType = nil
		b.NumberOfFloors = nil
		b.NumberOfEmployees = nil
	case Commercial:
		b.HomeSize = nil
		b.Bedrooms = nil
		b.Bathrooms = nil
	}
}

// BookingStats are the admin dashboard counters.  Bookings with an unknown
// status or property type only contribute to Total.
type BookingStats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Confirmed   int `json:"confirmed"`
	Completed   int `json:"completed"`
	Cancelled   int `json:"cancelled"`
	Residential int `json:"residential"`
	Commercial  int `json:"commercial"`
}

// BookingFilter narrows an admin listing.  Empty fields match everything.
type BookingFilter struct {
	Status       Status
	PropertyType PropertyType
}

// Match applies the filter; a booking without status matches "pending".
func (f BookingFilter) Match(b Booking) bool {
	if f.Status != "" && b.Status.OrPending() != f.Status {
		return false
	}
	if f.PropertyType != "" && b.PropertyType != f.PropertyType {
		return false
	}
	return true
}
