package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cleaning-booking/internal/handler"
	"github.com/iliyamo/cleaning-booking/internal/middleware"
	"github.com/iliyamo/cleaning-booking/internal/model"
	"github.com/iliyamo/cleaning-booking/internal/service"
)

// RegisterRoutes registers the routes that need no identity: the health
// check and the read side of the form and navigation settings.
func RegisterRoutes(e *echo.Echo, store handler.Pinger, s *handler.SettingsHandler) {
	e.GET("/healthz", handler.Health(store))
	e.GET("/v1/form-config", s.GetFormConfig)
	e.GET("/v1/navigation-settings", s.GetNavigation)
}

// RegisterAuth registers register/login under /v1/auth, behind the rate
// limiter, and the protected /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth *service.AuthService, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, signedIn(jwtSecret, auth)...)
}

// signedIn is the middleware chain for routes open to any signed-in user.
func signedIn(jwtSecret string, auth *service.AuthService) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.LoadUser(auth),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	}
}
