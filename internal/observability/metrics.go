package observability

import (
	"errors"
	"strings"
	"time"

	"moodfeed/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodfeed_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moodfeed_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostOperations counts post lifecycle operations by outcome.
	PostOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodfeed_posts_total",
		Help: "Post lifecycle operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// ClassifiedEmoji counts classifier results.
	ClassifiedEmoji = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodfeed_classified_emoji_total",
		Help: "Emoji returned by the sentiment classifier",
	}, []string{"emoji"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordPostOperation counts one post operation. The outcome label is
// "success" or the lower-cased error code.
func RecordPostOperation(operation string, err error) {
	PostOperations.WithLabelValues(operation, Outcome(err)).Inc()
}

// Outcome maps an operation error onto a metric label.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(appErr.Code)
	}
	return "error"
}

// RecordClassification counts one classifier result.
func RecordClassification(emoji string) {
	ClassifiedEmoji.WithLabelValues(emoji).Inc()
}
