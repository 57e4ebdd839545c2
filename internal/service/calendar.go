package service

import (
	"context"
	"time"

	"github.com/iliyamo/cleaning-booking/internal/kvstore"
	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/repository"
)

// civil layouts carry no zone and are taken as written
var civilLayouts = []string{"2006-01-02", "2006-01-02T15:04", "2006-01-02T15:04:05"}

// BookingDate returns the calendar date of b's preferred date.  Plain
// dates are used as written; timestamps with a zone are moved into loc
// first.  ok is false when the booking has no usable date.
func BookingDate(b model.Booking, loc *time.Location) (year int, month time.Month, day int, ok bool) {
	if b.PreferredDate == nil || *b.PreferredDate == "" {
		return 0, 0, 0, false
	}
	s := *b.PreferredDate
	for _, layout := range civilLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return y, m, d, true
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, 0, 0, false
	}
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return y, m, d, true
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOfMonth returns the weekday of the 1st, which is also the
// number of blank cells before it in a Sunday-first grid.
func FirstWeekdayOfMonth(year int, month time.Month) time.Weekday {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
}

// DayCell is one day of a month grid.
type DayCell struct {
	Day      int             `json:"day"`
	Bookings []model.Booking `json:"bookings"`
}

// MonthView is a 7-column, Sunday-first month grid.
type MonthView struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	LeadingBlanks int        `json:"leadingBlanks"`
	Days          []DayCell  `json:"days"`
}

// Calendar buckets bookings by preferred date.
type Calendar struct {
	list func(ctx context.Context) ([]model.Booking, error)
	loc  *time.Location
}

// NewCalendar indexes every booking in store.
func NewCalendar(store *kvstore.Store, loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	repo := repository.NewBookingRepo(store)
	return &Calendar{list: repo.List, loc: loc}
}

// ForUser returns a calendar restricted to bookings owned by userID.
func (c *Calendar) ForUser(userID string) *Calendar {
	return &Calendar{
		loc: c.loc,
		list: func(ctx context.Context) ([]model.Booking, error) {
			all, err := c.list(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]model.Booking, 0, len(all))
			for _, b := range all {
				if b.OwnedBy(userID) {
					out = append(out, b)
				}
			}
			return out, nil
		},
	}
}

func (c *Calendar) filter(ctx context.Context, keep func(y int, m time.Month, d int) bool) ([]model.Booking, error) {
	all, err := c.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Booking, 0)
	for _, b := range all {
		if y, m, d, ok := BookingDate(b, c.loc); ok && keep(y, m, d) {
			out = append(out, b)
		}
	}
	return out, nil
}

// BookingsForMonth returns the bookings whose preferred date falls in
// month of year.  Undated bookings are never included.
func (c *Calendar) BookingsForMonth(ctx context.Context, year int, month time.Month) ([]model.Booking, error) {
	return c.filter(ctx, func(y int, m time.Month, _ int) bool { return y == year && m == month })
}

// BookingsForDate returns the bookings whose preferred date is exactly the
// given day.
func (c *Calendar) BookingsForDate(ctx context.Context, year int, month time.Month, day int) ([]model.Booking, error) {
	return c.filter(ctx, func(y int, m time.Month, d int) bool { return y == year && m == month && d == day })
}

// MonthView lays out month of year with each day's bookings.
func (c *Calendar) MonthView(ctx context.Context, year int, month time.Month) (MonthView, error) {
	inMonth, err := c.BookingsForMonth(ctx, year, month)
	if err != nil {
		return MonthView{}, err
	}
	n := DaysInMonth(year, month)
	v := MonthView{
		Year:          year,
		Month:         month,
		LeadingBlanks: int(FirstWeekdayOfMonth(year, month)),
		Days:          make([]DayCell, n),
	}
	for i := range v.Days {
		v.Days[i] = DayCell{Day: i + 1, Bookings: []model.Booking{}}
	}
	for _, b := range inMonth {
		_, _, d, _ := BookingDate(b, c.loc)
		v.Days[d-1].Bookings = append(v.Days[d-1].Bookings, b)
	}
	return v, nil
}
