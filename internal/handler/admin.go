package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cleaning-booking/internal/middleware"
	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/repository"
	"github.com/iliyamo/cleaning-booking/internal/service"
)

// AdminHandler serves the admin dashboard: statistics, every booking, user
// management and the calendar.
type AdminHandler struct {
	Auth     *service.AuthService
	Bookings *service.BookingService
	Calendar *service.Calendar
}

func NewAdminHandler(auth *service.AuthService, b *service.BookingService, cal *service.Calendar) *AdminHandler {
	return &AdminHandler{Auth: auth, Bookings: b, Calendar: cal}
}

type statsResp struct {
	Bookings model.BookingStats `json:"bookings"`
	Users    model.UserStats    `json:"users"`
}

type roleReq struct {
	Role string `json:"role" validate:"required"`
}

// Stats recomputes both dashboards.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	bs, err := h.Bookings.Stats(ctx)
	if err != nil {
		return fail(c, err)
	}
	us, err := h.Auth.UserStats(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, statsResp{Bookings: bs, Users: us})
}

const (
	defaultRecentSignups = 5
	maxRecentSignups     = 100
)

// RecentSignups lists the latest signups, ?limit= of them (default 5).
func (h *AdminHandler) RecentSignups(c echo.Context) error {
	n := defaultRecentSignups
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > maxRecentSignups {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		n = l
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Auth.RecentSignups(ctx, n)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListBookings supports ?status= and ?propertyType= filters, newest first.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	f := model.BookingFilter{
		Status:       model.Status(c.QueryParam("status")),
		PropertyType: model.PropertyType(c.QueryParam("propertyType")),
	}
	if f.Status != "" && !knownStatus(f.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	if f.PropertyType != "" && f.PropertyType != model.Residential && f.PropertyType != model.Commercial {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown property type"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Bookings.List(ctx, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(list))
}

// UpdateBooking applies a partial update.  Keys missing from the body are
// kept; keys set to null are cleared.
func (h *AdminHandler) UpdateBooking(c echo.Context) error {
	var p model.BookingPatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if p.Status.Valid && !knownStatus(p.Status.Value) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	if p.PropertyType.Set && p.PropertyType.Value != model.Residential && p.PropertyType.Value != model.Commercial {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown property type"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, ok, err := h.Bookings.Update(ctx, c.Param("id"), p)
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return fail(c, repository.ErrBookingNotFound)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *AdminHandler) DeleteBooking(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	removed, err := h.Bookings.Delete(ctx, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	if !removed {
		return fail(c, repository.ErrBookingNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Auth.ListUsers(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, viewUsers(users))
}

func (h *AdminHandler) UserBookings(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	id := c.Param("id")
	if _, ok, err := h.Auth.UserByID(ctx, id); err != nil {
		return fail(c, err)
	} else if !ok {
		return fail(c, repository.ErrUserNotFound)
	}
	list, err := h.Bookings.ListForUser(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(list))
}

// SetRole promotes or demotes a user.
func (h *AdminHandler) SetRole(c echo.Context) error {
	var req roleReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Auth.UpdateRole(ctx, c.Param("id"), model.Role(req.Role))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, viewUser(u))
}

// DeleteUser removes a user and their bookings.  Admins cannot delete the
// account they are signed in with.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	if me, _ := middleware.CurrentUser(c); me.ID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete your own account"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	found, err := h.Auth.DeleteUser(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if !found {
		return fail(c, repository.ErrUserNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

// CalendarMonth returns the month grid over every booking.
func (h *AdminHandler) CalendarMonth(c echo.Context) error {
	year, month, err := yearMonth(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	view, err := h.Calendar.MonthView(ctx, year, month)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// CalendarDay lists the bookings preferred for ?year=&month=&day=.
func (h *AdminHandler) CalendarDay(c echo.Context) error {
	year, month, err := yearMonth(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	day, err := strconv.Atoi(c.QueryParam("day"))
	if err != nil || day < 1 || day > service.DaysInMonth(year, month) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid day"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Calendar.BookingsForDate(ctx, year, month, day)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(list))
}

func knownStatus(s model.Status) bool {
	for _, k := range model.Statuses {
		if s == k {
			return true
		}
	}
	return false
}
