package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cleaning-booking/internal/middleware"
	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/repository"
	"github.com/iliyamo/cleaning-booking/internal/service"
)

// BookingHandler serves booking submission and the self-service
// dashboard.  Signed-in users see and change only their own bookings;
// admins reach every booking through these routes too.
type BookingHandler struct {
	Bookings *service.BookingService
	Calendar *service.Calendar
}

func NewBookingHandler(b *service.BookingService, cal *service.Calendar) *BookingHandler {
	return &BookingHandler{Bookings: b, Calendar: cal}
}

type bookingReq struct {
	PropertyType   string  `json:"propertyType" validate:"required,oneof=residential commercial"`
	Name           string  `json:"name" validate:"required_if=PropertyType residential,max=200"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=40"`
	Address        *string `json:"address" validate:"omitempty,max=500"`
	Complexity     string  `json:"complexity" validate:"required,max=100"`
	PreferredDate  *string `json:"preferredDate" validate:"omitempty,max=40"`
	AdditionalInfo *string `json:"additionalInfo" validate:"omitempty,max=4000"`
	SquareFootage  *int    `json:"squareFootage" validate:"omitempty,gte=0"`

	HomeSize  *string `json:"homeSize" validate:"omitempty,max=100"`
	Bedrooms  *int    `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms *int    `json:"bathrooms" validate:"omitempty,gte=0"`

	BusinessName      *string `json:"businessName" validate:"required_if=PropertyType commercial"`
	OfficeType        *string `json:"officeType" validate:"omitempty,max=100"`
	NumberOfFloors    *int    `json:"numberOfFloors" validate:"omitempty,gte=1"`
	NumberOfEmployees *int    `json:"numberOfEmployees" validate:"omitempty,gte=0"`
}

func (r bookingReq) toModel() model.Booking {
	b := model.Booking{
		PropertyType:      model.PropertyType(r.PropertyType),
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone,
		Address:           r.Address,
		Complexity:        r.Complexity,
		PreferredDate:     r.PreferredDate,
		AdditionalInfo:    r.AdditionalInfo,
		SquareFootage:     r.SquareFootage,
		HomeSize:          r.HomeSize,
		Bedrooms:          r.Bedrooms,
		Bathrooms:         r.Bathrooms,
		BusinessName:      r.BusinessName,
		OfficeType:        r.OfficeType,
		NumberOfFloors:    r.NumberOfFloors,
		NumberOfEmployees: r.NumberOfEmployees,
	}
	// commercial requests name the business, not a person
	if b.Name == "" && b.BusinessName != nil {
		b.Name = *b.BusinessName
	}
	return b
}

type statusReq struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

// Create stores a booking request.  Guests may submit; a signed-in user's
// booking is linked to their account.
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	b := req.toModel()
	if u, ok := middleware.CurrentUser(c); ok {
		b.UserID = &u.ID
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	created, err := h.Bookings.Create(ctx, b)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// MyBookings lists the caller's bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Bookings.ListForUser(ctx, u.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(list))
}

// accessible loads booking id and checks the caller may touch it.
func (h *BookingHandler) accessible(ctx context.Context, c echo.Context, id string) (model.Booking, error) {
	b, ok, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	if !ok {
		return model.Booking{}, repository.ErrBookingNotFound
	}
	u, _ := middleware.CurrentUser(c)
	if !u.IsAdmin() && !b.OwnedBy(u.ID) {
		return model.Booking{}, repository.ErrForbidden
	}
	return b, nil
}

func (h *BookingHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.accessible(ctx, c, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.accessible(ctx, c, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	removed, err := h.Bookings.Delete(ctx, b.ID)
	if err != nil {
		return fail(c, err)
	}
	if !removed {
		return fail(c, repository.ErrBookingNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetStatus moves a booking to any status; there is no transition table.
func (h *BookingHandler) SetStatus(c echo.Context) error {
	var req statusReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.accessible(ctx, c, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	updated, ok, err := h.Bookings.SetStatus(ctx, b.ID, model.Status(req.Status))
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return fail(c, repository.ErrBookingNotFound)
	}
	return c.JSON(http.StatusOK, updated)
}

// MyCalendar returns the month grid of the caller's own bookings.
func (h *BookingHandler) MyCalendar(c echo.Context) error {
	year, month, err := yearMonth(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	u, _ := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	view, err := h.Calendar.ForUser(u.ID).MonthView(ctx, year, month)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// yearMonth reads ?year=&month= (1-12), defaulting to the current month.
func yearMonth(c echo.Context) (int, time.Month, error) {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if v := c.QueryParam("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 9999 {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = n
	}
	if v := c.QueryParam("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, fmt.Errorf("invalid month %q: want 1-12", v)
		}
		month = time.Month(n)
	}
	return year, month, nil
}
