package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cleaning-booking/internal/handler"
	"github.com/iliyamo/cleaning-booking/internal/middleware"
	"github.com/iliyamo/cleaning-booking/internal/service"
)

// RegisterBookings registers booking submission (guests allowed) and the
// signed-in user's dashboard routes.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, auth *service.AuthService, jwtSecret string) {
	e.POST("/v1/bookings", b.Create, middleware.OptionalJWT(jwtSecret), middleware.LoadUser(auth))

	g := e.Group("/v1", signedIn(jwtSecret, auth)...)
	g.GET("/my-bookings", b.MyBookings)
	g.GET("/bookings/:id", b.Get)
	g.DELETE("/bookings/:id", b.Delete)
	g.PATCH("/bookings/:id/status", b.SetStatus)
	g.GET("/calendar", b.MyCalendar)
}
