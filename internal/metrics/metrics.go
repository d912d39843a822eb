// Package metrics registers the Prometheus collectors exposed on
// /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SweepRuns counts completed migration sweeps.
	SweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymstack_migration_sweeps_total",
		Help: "Total number of completed migration sweeps",
	})

	// SweepSchemasMigrated counts schemas migrated successfully.
	SweepSchemasMigrated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymstack_migration_schemas_migrated_total",
		Help: "Total number of tenant schemas migrated successfully",
	})

	// SweepSchemasFailed counts per-schema migration failures.
	SweepSchemasFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymstack_migration_schemas_failed_total",
		Help: "Total number of tenant schema migrations that failed",
	})

	// TenantUnitsOfWork counts router executions by outcome.
	TenantUnitsOfWork = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymstack_tenant_units_of_work_total",
		Help: "Total number of tenant-scoped units of work by outcome",
	}, []string{"outcome"})

	requestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymstack_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gymstack_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// HTTPMiddleware returns an Echo middleware that records request counts
// and latencies. Paths are recorded as route templates, not raw URLs,
// to keep label cardinality bounded.
func HTTPMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unknown"
			}
			requestCount.WithLabelValues(
				c.Request().Method, path, strconv.Itoa(c.Response().Status),
			).Inc()
			requestDuration.WithLabelValues(c.Request().Method, path).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
