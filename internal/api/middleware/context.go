package middleware

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/ports"
	"github.com/sirpyerre/user-management-api/internal/core/reqctx"
	"github.com/sirpyerre/user-management-api/pkg/logger"
)

const (
	HeaderUserID       = "X-User-ID"
	HeaderResponseTime = "X-Response-Time"
	HeaderAPIVersion   = "X-API-Version"
	HeaderServerTime   = "X-Server-Time"

	apiVersion = "1.0.0"
)

// RequestContext attaches request metadata, a request-scoped logger and the
// standard response headers, and reports each request on the event bus.
// Handler errors are rendered here so the logged status is final.
func RequestContext(events ports.EventPublisher, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			info := &reqctx.Info{
				RequestID: rid,
				Method:    req.Method,
				Path:      req.URL.Path,
				UserAgent: req.UserAgent(),
				IP:        c.RealIP(),
				StartedAt: start,
				UserID:    req.Header.Get(HeaderUserID),
			}

			reqLog := log.With().Str("request_id", rid).Logger()
			ctx := reqctx.With(logger.WithContext(req.Context(), reqLog), info)
			c.SetRequest(req.WithContext(ctx))

			h := res.Header()
			h.Set(echo.HeaderXRequestID, rid)
			h.Set(HeaderAPIVersion, apiVersion)
			h.Set(HeaderServerTime, start.UTC().Format(time.RFC3339Nano))
			res.Before(func() {
				res.Header().Set(HeaderResponseTime, strconv.FormatInt(time.Since(start).Milliseconds(), 10)+"ms")
			})

			reqLog.Info().Str("method", info.Method).Str("path", info.Path).Msg("request started")
			events.Publish(ctx, domain.EventAPIRequest, map[string]any{
				"method": info.Method,
				"path":   info.Path,
			})

			if err := next(c); err != nil {
				c.Error(err)
			}

			duration := time.Since(start)
			reqLog.Info().
				Str("method", info.Method).
				Str("path", info.Path).
				Int("status", res.Status).
				Dur("duration", duration).
				Msg("request completed")
			events.Publish(c.Request().Context(), domain.EventAPIResponse, map[string]any{
				"method":     info.Method,
				"path":       info.Path,
				"statusCode": res.Status,
				"durationMs": duration.Milliseconds(),
			})
			return nil
		}
	}
}
