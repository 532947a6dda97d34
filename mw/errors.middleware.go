package mw

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/go-arrower/mirrorhub/alog"
)

// ValidationResponse is the body of all 422 responses.
type ValidationResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// ValidationFailed returns a 422 error with a message per field.
func ValidationFailed(fields map[string]string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, ValidationResponse{
		Message: "validation failed",
		Fields:  fields,
	})
}

// ErrorHandler writes all errors as JSON.
// Errors of the validator become a 422, unknown errors a 500, which are logged.
func ErrorHandler(logger alog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			httpErr *echo.HTTPError
			vErrs   validator.ValidationErrors
		)

		switch {
		case errors.As(err, &httpErr):
		case errors.As(err, &vErrs):
			httpErr = ValidationFailed(fieldMessages(vErrs))
		default:
			httpErr = echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
		}

		if httpErr.Code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("path", c.Path()),
				slog.Int("status", httpErr.Code),
				slog.Any("err", err),
			)
		}

		body := httpErr.Message
		if msg, ok := body.(string); ok {
			body = echo.Map{"message": msg}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.Code)
		} else {
			err = c.JSON(httpErr.Code, body)
		}

		if err != nil {
			logger.ErrorContext(c.Request().Context(), "could not write error response", slog.Any("err", err))
		}
	}
}

func fieldMessages(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))

	for _, e := range errs {
		msg := "invalid value, failed on " + e.Tag()
		if e.Param() != "" {
			msg += "=" + e.Param()
		}

		fields[e.Field()] = msg
	}

	return fields
}
