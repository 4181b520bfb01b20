package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the HTTP metrics collector once per process; the
// collectors live in the default prometheus registry.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request counts and latencies and mounts the
// /metrics scrape endpoint on app.
func MetricsMiddleware(app *fiber.App, serviceName string) fiber.Handler {
	p := InitMetrics(serviceName)
	p.RegisterAt(app, "/metrics")
	return p.Middleware
}
