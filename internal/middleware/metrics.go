package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// LikeToggles counts like toggle operations by resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_like_toggles_total",
		Help: "Total number of like toggle operations by resulting state",
	}, []string{"state"})

	// BlobOperations counts blob store operations by backend, operation and outcome.
	BlobOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumen_blob_operations_total",
		Help: "Total number of blob store operations",
	}, []string{"backend", "operation", "outcome"})
)

var (
	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The instance is shared; fiberprometheus registers its collectors on the
// default registry and registering twice panics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New(serviceName)
	})
	return promInstance
}

// MetricsMiddleware returns the Fiber handler recording HTTP metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
