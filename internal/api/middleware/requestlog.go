package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// healthPaths are probe endpoints with suppressed steady-state logging:
// the first success and every failure are logged, repeat successes are not.
// Probes fire constantly and a healthy probe carries no new information.
var healthPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
}

// RequestLog returns Echo middleware that logs requests with structured fields.
// It generates a request ID if none is provided and propagates it through
// the response header and echo context. Health probe logging follows the
// healthPaths suppression rule, with failures logged at WARN.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var mu sync.Mutex
	lastProbeOK := make(map[string]bool)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			path := c.Request().URL.Path
			status := c.Response().Status
			ok := status >= 200 && status < 400

			level := slog.LevelInfo
			if _, probe := healthPaths[path]; probe {
				mu.Lock()
				wasOK := lastProbeOK[path]
				lastProbeOK[path] = ok
				mu.Unlock()

				if ok && wasOK {
					return err
				}
				if !ok {
					level = slog.LevelWarn
				}
			}

			log.Log(c.Request().Context(), level, "request",
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)

			return err
		}
	}
}
