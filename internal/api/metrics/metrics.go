// Package metrics defines and registers the custom Prometheus metrics of the
// booking API. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is loaded; /metrics serves them via echoprometheus.NewHandler.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "booking"

// ── Booking metrics ───────────────────────────────────────────────────────────

// BookingsCreatedTotal counts ledger entries created.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings written to the ledger.",
	},
)

// BookingsDeletedTotal counts ledger entries removed by owners or admins.
var BookingsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_deleted_total",
		Help:      "Total number of bookings deleted from the ledger.",
	},
)

// TicketMirrorTotal counts attempts to copy a booking summary onto its owner.
// Label:
//   - result: "ok" or "failed"
var TicketMirrorTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticket_mirror_total",
		Help:      "Denormalized ticket appends, labelled by result (ok/failed).",
	},
	[]string{"result"},
)

// MirrorQueueDepth tracks the events waiting in each mirror worker channel.
var MirrorQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ticket_mirror_queue_depth",
		Help:      "Current number of ticket summaries pending in each mirror worker channel.",
	},
	[]string{"worker_id"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "bad_password" or "unknown_user"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthRejectionsTotal counts requests stopped by the access guard.
// Label:
//   - reason: "missing_token", "invalid_token", "unknown_user" or "not_admin"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Requests rejected by the access guard, by reason.",
	},
	[]string{"reason"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures handler latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by method, route and status code.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"method", "route", "code"},
)

// Middleware records HTTPRequestDuration for every request. The route label is
// the registered path pattern, not the raw URL, to keep cardinality bounded.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				// Render the error now so the recorded status is the final one.
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			HTTPRequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(c.Response().Status)).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
