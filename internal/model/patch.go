package model

import "encoding/json"

// Optional is one field of a partial update.  The zero value means "leave
// unchanged"; Null clears the field; Some sets it.  Decoding JSON keeps the
// same three cases apart: a missing key never reaches UnmarshalJSON, an
// explicit null arrives as "null".
type Optional[T any] struct {
	Set   bool // the field was present in the update
	Valid bool // the field carries a value (false with Set means null)
	Value T
}

// Some returns an Optional that sets the field to v.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Valid: true, Value: v} }

// Null returns an Optional that clears the field.
func Null[T any]() Optional[T] { return Optional[T]{Set: true} }

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Valid = false
		var zero T
		o.Value = zero
		return nil
	}
	o.Valid = true
	return json.Unmarshal(b, &o.Value)
}

// applyPtr merges o into a nullable field.
func applyPtr[T any](o Optional[T], dst **T) {
	if !o.Set {
		return
	}
	if !o.Valid {
		*dst = nil
		return
	}
	v := o.Value
	*dst = &v
}

// applyVal merges o into a plain field; null resets it to the zero value.
func applyVal[T any](o Optional[T], dst *T) {
	if !o.Set {
		return
	}
	if !o.Valid {
		var zero T
		*dst = zero
		return
	}
	*dst = o.Value
}

// BookingPatch is a shallow partial update of a Booking.  ID and CreatedAt
// are not patchable.
type BookingPatch struct {
	UserID         Optional[string]       `json:"userId"`
	PropertyType   Optional[PropertyType] `json:"propertyType"`
	Name           Optional[string]       `json:"name"`
	Email          Optional[string]       `json:"email"`
	Phone          Optional[string]       `json:"phone"`
	Address        Optional[string]       `json:"address"`
	Complexity     Optional[string]       `json:"complexity"`
	Status         Optional[Status]       `json:"status"`
	PreferredDate  Optional[string]       `json:"preferredDate"`
	AdditionalInfo Optional[string]       `json:"additionalInfo"`
	SquareFootage  Optional[int]          `json:"squareFootage"`

	HomeSize  Optional[string] `json:"homeSize"`
	Bedrooms  Optional[int]    `json:"bedrooms"`
	Bathrooms Optional[int]    `json:"bathrooms"`

	BusinessName      Optional[string] `json:"businessName"`
	OfficeType        Optional[string] `json:"officeType"`
	NumberOfFloors    Optional[int]    `json:"numberOfFloors"`
	NumberOfEmployees Optional[int]    `json:"numberOfEmployees"`
}

// ApplyTo merges the patch into b and then drops the field group that no
// longer matches b's property type.
func (p BookingPatch) ApplyTo(b *Booking) {
	applyPtr(p.UserID, &b.UserID)
	applyVal(p.PropertyType, &b.PropertyType)
	applyVal(p.Name, &b.Name)
	applyVal(p.Email, &b.Email)
	applyPtr(p.Phone, &b.Phone)
	applyPtr(p.Address, &b.Address)
	applyVal(p.Complexity, &b.Complexity)
	applyVal(p.Status, &b.Status)
	applyPtr(p.PreferredDate, &b.PreferredDate)
	applyPtr(p.AdditionalInfo, &b.AdditionalInfo)
	applyPtr(p.SquareFootage, &b.SquareFootage)

	applyPtr(p.HomeSize, &b.HomeSize)
	applyPtr(p.Bedrooms, &b.Bedrooms)
	applyPtr(p.Bathrooms, &b.Bathrooms)

	applyPtr(p.BusinessName, &b.BusinessName)
	applyPtr(p.OfficeType, &b.OfficeType)
	applyPtr(p.NumberOfFloors, &b.NumberOfFloors)
	applyPtr(p.NumberOfEmployees, &b.NumberOfEmployees)

	b.ClearOtherGroup()
}
