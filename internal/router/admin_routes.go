package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cleaning-booking/internal/handler"
	"github.com/iliyamo/cleaning-booking/internal/middleware"
	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/service"
)

// RegisterAdmin registers the /v1/admin group.  Every route requires a
// stored admin role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, s *handler.SettingsHandler, auth *service.AuthService, jwtSecret string) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.LoadUser(auth),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/stats", a.Stats)
	g.GET("/signups/recent", a.RecentSignups)

	g.GET("/bookings", a.ListBookings)
	g.PATCH("/bookings/:id", a.UpdateBooking)
	g.DELETE("/bookings/:id", a.DeleteBooking)

	g.GET("/users", a.ListUsers)
	g.GET("/users/:id/bookings", a.UserBookings)
	g.PATCH("/users/:id/role", a.SetRole)
	g.DELETE("/users/:id", a.DeleteUser)

	g.GET("/calendar", a.CalendarMonth)
	g.GET("/calendar/day", a.CalendarDay)

	g.PUT("/form-config", s.SaveFormConfig)
	g.POST("/form-config/reset", s.ResetFormConfig)
	g.PUT("/navigation-settings", s.SaveNavigation)
}
