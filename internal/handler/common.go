package handler // handler defines http handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/repository"
)

var validate = validator.New()

const requestTimeout = 5 * time.Second

// reqCtx bounds store calls made on behalf of a request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func validationDetails(errs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(errs))
	for _, err := range errs {
		var msg string
		switch err.Tag() {
		case "required", "required_if":
			msg = fmt.Sprintf("Field '%s' is required", err.Field())
		case "email":
			msg = fmt.Sprintf("Field '%s' must be a valid email address", err.Field())
		case "min", "gte":
			msg = fmt.Sprintf("Field '%s' must be at least %s", err.Field(), err.Param())
		case "max":
			msg = fmt.Sprintf("Field '%s' must not exceed %s", err.Field(), err.Param())
		case "oneof":
			msg = fmt.Sprintf("Field '%s' must be one of [%s]", err.Field(), err.Param())
		default:
			msg = fmt.Sprintf("Field '%s' failed on the '%s' rule", err.Field(), err.Tag())
		}
		out = append(out, fieldError{Field: err.Field(), Message: msg})
	}
	return out
}

// bind decodes the request into req and validates it.  When ok is false a
// 400 response has already been written and the handler returns err.
func bind(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "details": validationDetails(verrs)})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	return true, nil
}

// fail maps store errors to HTTP responses.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateUser):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrInvalidRole):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too long"})
	case errors.Is(err, repository.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrStorageFailure):
		logrus.WithError(err).Error("storage write rejected")
		return c.JSON(http.StatusInsufficientStorage, echo.Map{"error": "storage unavailable"})
	}
	logrus.WithError(err).WithField("path", c.Path()).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// userView is the public shape of a user; it never carries the hash.
type userView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

func viewUser(u model.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

func viewUsers(us []model.User) []userView {
	out := make([]userView, len(us))
	for i, u := range us {
		out[i] = viewUser(u)
	}
	return out
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil(bs []model.Booking) []model.Booking {
	if bs == nil {
		return []model.Booking{}
	}
	return bs
}
