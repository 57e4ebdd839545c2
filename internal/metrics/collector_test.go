package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cleaning-booking/internal/model"
)

type fakeStats struct {
	bookings model.BookingStats
	users    model.UserStats
	err      error
}

func (f fakeStats) Stats(context.Context) (model.BookingStats, error) { return f.bookings, f.err }
func (f fakeStats) UserStats(context.Context) (model.UserStats, error) {
	return f.users, f.err
}

func TestCollectorReportsStats(t *testing.T) {
	log, _ := test.NewNullLogger()
	f := fakeStats{
		bookings: model.BookingStats{Total: 4, Pending: 2, Confirmed: 1, Cancelled: 1, Residential: 3, Commercial: 1},
		users:    model.UserStats{Total: 3, Admins: 1, Regular: 2, SignupsToday: 1, SignupsThisWeek: 2},
	}
	c := NewCollector(f, f, log)

	expected := `
# HELP cleaning_bookings Bookings by status.
# TYPE cleaning_bookings gauge
cleaning_bookings{status="cancelled"} 1
cleaning_bookings{status="completed"} 0
cleaning_bookings{status="confirmed"} 1
cleaning_bookings{status="pending"} 2
# HELP cleaning_users User accounts by role.
# TYPE cleaning_users gauge
cleaning_users{role="admin"} 1
cleaning_users{role="user"} 2
# HELP cleaning_store_up Whether the last scrape could read the store.
# TYPE cleaning_store_up gauge
cleaning_store_up 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"cleaning_bookings", "cleaning_users", "cleaning_store_up"))
	assert.Equal(t, 12, testutil.CollectAndCount(c))
}

func TestCollectorMarksStoreDown(t *testing.T) {
	log, _ := test.NewNullLogger()
	f := fakeStats{err: errors.New("unreachable")}
	c := NewCollector(f, f, log)

	assert.Equal(t, 1, testutil.CollectAndCount(c))
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(`
# HELP cleaning_store_up Whether the last scrape could read the store.
# TYPE cleaning_store_up gauge
cleaning_store_up 0
`), "cleaning_store_up"))
}

func TestHTTPMiddlewareCountsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/v1/bookings/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bookings/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/v1/bookings/:id", "204")))
}
