package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_submissions_total",
			Help: "Scouting entries stored, by form purpose",
		},
		[]string{"purpose"},
	)

	bestEffortFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_best_effort_failures_total",
			Help: "Failed side calls that were logged and not returned to the caller",
		},
		[]string{"op"},
	)

	tbaRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_tba_requests_total",
			Help: "Requests made to The Blue Alliance API",
		},
		[]string{"endpoint", "status"},
	)
)

func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func RecordSubmission(purpose string) {
	submissionsTotal.WithLabelValues(purpose).Inc()
}

// RecordBestEffortFailure counts a side call whose error was swallowed.
func RecordBestEffortFailure(op string) {
	bestEffortFailuresTotal.WithLabelValues(op).Inc()
}

// RecordTBARequest counts one upstream call. status is the HTTP status code,
// or 0 when no response arrived.
func RecordTBARequest(endpoint string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	tbaRequestsTotal.WithLabelValues(endpoint, label).Inc()
}
