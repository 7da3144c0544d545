package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bucketlist_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// SessionsIssued counts session token issuance by trigger.
	SessionsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bucketlist_sessions_issued_total",
		Help: "Total number of session tokens issued, by trigger (register, login, renew)",
	}, []string{"trigger"})

	// PhotosIngested counts photo ingestion attempts by outcome.
	PhotosIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bucketlist_photos_ingested_total",
		Help: "Total number of photo ingestion attempts by outcome",
	}, []string{"outcome"})

	// StorageUploadDuration records object storage upload latency in seconds.
	StorageUploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bucketlist_storage_upload_duration_seconds",
		Help:    "Object storage upload latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// LikesToggled counts like toggles by resulting state.
	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bucketlist_likes_toggled_total",
		Help: "Total number of like toggles by resulting state (liked, unliked)",
	}, []string{"state"})
)

// InitMetrics creates the fiberprometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus handler as a Fiber middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
