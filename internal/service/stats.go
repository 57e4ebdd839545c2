package service

import (
	"time"

	"github.com/iliyamo/cleaning-booking/internal/model"
)

// ComputeBookingStats counts bookings by status and property type.  A
// booking without status counts as pending; an unknown status or property
// type only counts toward Total.
func ComputeBookingStats(bookings []model.Booking) model.BookingStats {
	var st model.BookingStats
	for _, b := range bookings {
		st.Total++
		switch b.Status.OrPending() {
		case model.StatusPending:
			st.Pending++
		case model.StatusConfirmed:
			st.Confirmed++
		case model.StatusCompleted:
			st.Completed++
		case model.StatusCancelled:
			st.Cancelled++
		}
		switch b.PropertyType {
		case model.Residential:
			st.Residential++
		case model.Commercial:
			st.Commercial++
		}
	}
	return st
}

// ComputeUserStats counts users by role and signups by age.  Users with an
// unrecognized role count only toward Total.  A signup is
// "today" when it falls on now's calendar date in loc, and "this week" when
// it is no older than seven days before now.
func ComputeUserStats(users []model.User, signups []model.Signup, now time.Time, loc *time.Location) model.UserStats {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	weekAgo := now.AddDate(0, 0, -7)

	st := model.UserStats{Total: len(users)}
	for _, u := range users {
		switch u.Role {
		case model.RoleAdmin:
			st.Admins++
		case model.RoleUser:
			st.Regular++
		}
	}
	for _, sg := range signups {
		ts := sg.Timestamp.In(loc)
		if sameDate(ts, now) {
			st.SignupsToday++
		}
		if !ts.Before(weekAgo) {
			st.SignupsThisWeek++
		}
	}
	return st
}

// RecentSignups returns the last n signups in log order, newest first.
// Display is the account's name, else its email, else the email recorded at
// signup when the account is gone.
func RecentSignups(users []model.User, signups []model.Signup, n int) []model.RecentSignup {
	if n <= 0 {
		return []model.RecentSignup{}
	}
	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]model.RecentSignup, 0, n)
	for i := len(signups) - 1; i >= 0 && len(out) < n; i-- {
		sg := signups[i]
		r := model.RecentSignup{UserID: sg.UserID, Email: sg.Email, Display: sg.Email, Timestamp: sg.Timestamp}
		if u, ok := byID[sg.UserID]; ok {
			r.Name = u.Name
			switch {
			case u.Name != "":
				r.Display = u.Name
			case u.Email != "":
				r.Display = u.Email
			}
		}
		out = append(out, r)
	}
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
