package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"microblog/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		statusCode := c.Response().StatusCode()
		if err != nil {
			statusCode = fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				statusCode = fiberErr.Code
			}
		}
		path := sanitizePath(c.Path())

		metrics.HttpRequestsTotal.WithLabelValues(c.Method(), path, http.StatusText(statusCode)).Inc()
		metrics.HttpRequestDuration.WithLabelValues(c.Method(), path).Observe(duration)

		return err
	}
}

func sanitizePath(path string) string {
	// Strip query parameters so metrics group by route.
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	return path
}
