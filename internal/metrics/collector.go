// Package metrics exposes booking and account counters to Prometheus.  The
// counters are recomputed from the store on every scrape, the same way the
// admin dashboard recomputes them.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cleaning-booking/internal/logger"
	"github.com/iliyamo/cleaning-booking/internal/model"
)

type BookingStatser interface {
	Stats(ctx context.Context) (model.BookingStats, error)
}

type UserStatser interface {
	UserStats(ctx context.Context) (model.UserStats, error)
}

// Collector is a prometheus.Collector over the stats services.
type Collector struct {
	bookings BookingStatser
	users    UserStatser
	log      logrus.FieldLogger

	byStatus   *prometheus.Desc
	byProperty *prometheus.Desc
	total      *prometheus.Desc
	byRole     *prometheus.Desc
	signups    *prometheus.Desc
	up         *prometheus.Desc
}

func NewCollector(b BookingStatser, u UserStatser, log logrus.FieldLogger) *Collector {
	return &Collector{
		bookings:   b,
		users:      u,
		log:        logger.OrStandard(log),
		byStatus:   prometheus.NewDesc("cleaning_bookings", "Bookings by status.", []string{"status"}, nil),
		byProperty: prometheus.NewDesc("cleaning_bookings_by_property_type", "Bookings by property type.", []string{"property_type"}, nil),
		total:      prometheus.NewDesc("cleaning_bookings_stored", "All stored bookings.", nil, nil),
		byRole:     prometheus.NewDesc("cleaning_users", "User accounts by role.", []string{"role"}, nil),
		signups:    prometheus.NewDesc("cleaning_signups", "Signups in the trailing window.", []string{"window"}, nil),
		up:         prometheus.NewDesc("cleaning_store_up", "Whether the last scrape could read the store.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.byStatus
	ch <- c.byProperty
	ch <- c.total
	ch <- c.byRole
	ch <- c.signups
	ch <- c.up
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	up := 1.0
	if bs, err := c.bookings.Stats(ctx); err != nil {
		c.log.Warnf("metrics: booking stats: %v", err)
		up = 0
	} else {
		gauge := func(d *prometheus.Desc, v int, labels ...string) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), labels...)
		}
		gauge(c.byStatus, bs.Pending, string(model.StatusPending))
		gauge(c.byStatus, bs.Confirmed, string(model.StatusConfirmed))
		gauge(c.byStatus, bs.Completed, string(model.StatusCompleted))
		gauge(c.byStatus, bs.Cancelled, string(model.StatusCancelled))
		gauge(c.byProperty, bs.Residential, string(model.Residential))
		gauge(c.byProperty, bs.Commercial, string(model.Commercial))
		gauge(c.total, bs.Total)
	}

	if us, err := c.users.UserStats(ctx); err != nil {
		c.log.Warnf("metrics: user stats: %v", err)
		up = 0
	} else {
		ch <- prometheus.MustNewConstMetric(c.byRole, prometheus.GaugeValue, float64(us.Admins), string(model.RoleAdmin))
		ch <- prometheus.MustNewConstMetric(c.byRole, prometheus.GaugeValue, float64(us.Regular), string(model.RoleUser))
		ch <- prometheus.MustNewConstMetric(c.signups, prometheus.GaugeValue, float64(us.SignupsToday), "today")
		ch <- prometheus.MustNewConstMetric(c.signups, prometheus.GaugeValue, float64(us.SignupsThisWeek), "week")
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, up)
}
