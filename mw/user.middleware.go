// Package mw contains the echo middlewares shared by all Contexts.
package mw

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/go-arrower/mirrorhub/alog"
)

// HeaderUserID carries the id of the acting user. There is no authentication,
// a proxy in front of mirrorhub is expected to set it.
const HeaderUserID = "X-User-ID"

type userIDKey struct{}

// ActingUser puts the value of HeaderUserID into the request context, see UserID.
// It is also added to all log records of the request.
func ActingUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Request().Header.Get(HeaderUserID)
		if userID == "" {
			return next(c)
		}

		ctx := context.WithValue(c.Request().Context(), userIDKey{}, userID)
		ctx = alog.AddAttr(ctx, slog.String("user_id", userID))
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequireUser rejects requests without an acting user.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if UserID(c.Request().Context()) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing header "+HeaderUserID)
		}

		return next(c)
	}
}

// UserID returns the acting user or the empty string.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey{}).(string)

	return userID
}
