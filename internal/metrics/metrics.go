package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PostsTotal is the current size of the post collection, refreshed by the stats job.
	PostsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "blog_posts_total",
			Help: "Current number of posts",
		},
	)

	// PostMutations counts post writes by action (create, update, delete).
	PostMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_post_mutations_total",
			Help: "Total number of post mutations by action",
		},
		[]string{"action"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, PostsTotal, PostMutations)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /api/posts/123 -> /api/posts/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// SetPostsTotal sets the posts gauge (called by the stats refresher).
func SetPostsTotal(n int) {
	PostsTotal.Set(float64(n))
}

// IncPostMutations increments the mutation counter for the given action.
func IncPostMutations(action string) {
	PostMutations.WithLabelValues(action).Inc()
}
