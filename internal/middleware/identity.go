package middleware

// identity.go resolves the token subject to a stored user.  Roles are taken
// from the store, not the token, so a demotion or deletion applies to
// tokens issued before it.

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/service"
)

const ctxUser = "user"

// LoadUser looks up the user named by the token (see JWTAuth) and stores it
// in the context.  Requests without a subject pass through as guests; a
// subject whose account is gone is rejected with 401.
func LoadUser(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := userID(c)
			if id == "" {
				return next(c)
			}
			u, ok, err := auth.UserByID(c.Request().Context(), id)
			if err != nil {
				logrus.WithError(err).Error("identity: user lookup failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account no longer exists"})
			}
			c.Set(ctxUser, u)
			c.Set(ctxRole, string(u.Role))
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by LoadUser.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ctxUser).(model.User)
	return u, ok
}

// userID extracts the token subject; empty for guests.
func userID(c echo.Context) string {
	if v, ok := c.Get(ctxUserID).(string); ok {
		return v
	}
	return ""
}
