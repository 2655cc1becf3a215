// Package observability provides Prometheus metrics for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostsPublished counts successful post publications.
	PostsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_posts_published_total",
		Help: "Total number of posts published",
	})

	// PostViews counts view-count increments on published posts.
	PostViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_post_views_total",
		Help: "Total number of recorded post views",
	})

	// AuthFailures counts failed login attempts. Failure causes are
	// deliberately not labeled to avoid leaking which check failed.
	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_auth_failures_total",
		Help: "Total number of failed authentication attempts",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
