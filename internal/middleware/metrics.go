package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// EmailsSent counts outbound emails by outcome.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_emails_sent_total",
		Help: "Total number of outbound emails by outcome",
	}, []string{"outcome"})
)

// InitMetrics creates the Prometheus HTTP metrics middleware for the service.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
