package mw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/go-arrower/mirrorhub/alog"
)

// Logged logs every request at alog.LevelInfo.
func Logged(logger alog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			logger.LogAttrs(c.Request().Context(), alog.LevelInfo, "request",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.Int("status", c.Response().Status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return nil
		}
	}
}
