package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Pinger is satisfied by kvstore.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health is a health‑check endpoint used by load balancers and monitoring
// systems.  It answers "ok" while the store backend is reachable and 503
// otherwise.
func Health(store Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("health: store unreachable")
			return c.String(http.StatusServiceUnavailable, "store unavailable")
		}
		return c.String(http.StatusOK, "ok")
	}
}
