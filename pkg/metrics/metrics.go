package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts HTTP requests by route and status.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	RequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	ReadingsAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grain_readings_accepted_total",
			Help: "Readings persisted, split by whether they advanced the silo snapshot",
		},
		[]string{"advanced"},
	)

	ReadingsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grain_readings_rejected_total",
			Help: "Readings rejected by the normalizer",
		},
		[]string{"reason"},
	)

	AssessmentsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grain_risk_assessments_total",
			Help: "Risk assessments persisted by level",
		},
		[]string{"level"},
	)

	AssessmentRaces = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grain_risk_assessment_races_total",
			Help: "Assessment writes that lost the batch version check",
		},
	)

	NotificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grain_notifications_total",
			Help: "Notification events by category and outcome (created, merged)",
		},
		[]string{"category", "outcome"},
	)

	OutboxPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grain_outbox_publish_failures_total",
			Help: "Outbox delivery publish attempts that failed",
		},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDurationHistogram,
			ReadingsAccepted,
			ReadingsRejected,
			AssessmentsWritten,
			AssessmentRaces,
			NotificationsDispatched,
			OutboxPublishFailures,
		)
	})
}

// Middleware records request count and latency per matched route.
func Middleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		RequestCounter.WithLabelValues(serviceName, method, path, status).Inc()
		RequestDurationHistogram.WithLabelValues(serviceName, method, path, status).
			Observe(time.Since(start).Seconds())
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
