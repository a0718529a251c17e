package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/app-catalog/app-catalog/internal/safego"
)

// HTTP metrics — labelled by method, route template, and status code.
//
// HTTPRequestsTotal uses c.FullPath() (route template such as /api/v1/apps/:appId)
// rather than the raw URL to prevent unbounded label cardinality from
// user-supplied path segments such as app identifiers or version strings.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Catalog pipeline metrics.
//
// SubmissionsTotal counts submission attempts by outcome ("created",
// "conflict", "invalid", "error"), so a spike in rejected payloads is visible
// without log scraping.
//
// ApprovalDecisionsTotal counts recorded review decisions by resulting status
// and by scope ("app" or "version").
//
// ReleaseImportsTotal counts GitHub release import attempts by outcome
// ("created", "updated", "not_found", "no_assets", "error").
var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_submissions_total",
			Help: "Total number of app submission attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	ApprovalDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_approval_decisions_total",
			Help: "Total number of recorded approval decisions, by status and scope.",
		},
		[]string{"status", "scope"},
	)

	ReleaseImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_release_imports_total",
			Help: "Total number of GitHub release import attempts, by outcome.",
		},
		[]string{"outcome"},
	)
)

// DBOpenConnections tracks the number of open connections currently held by
// the sql.DB pool. It is sampled every 30 seconds by StartDBStatsCollector
// rather than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB
// connection pool statistics every 30 seconds and updates the
// DBOpenConnections gauge. The goroutine exits when the database becomes
// unreachable, which happens on shutdown once main defers db.Close().
func StartDBStatsCollector(db *sql.DB) {
	safego.Go(func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	})
}
