// Package web is the JSON api of the systems Context.
package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/go-arrower/mirrorhub/contexts/systems/internal/application"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
	"github.com/go-arrower/mirrorhub/mw"
)

func NewSystemController(app application.SystemsApplication) SystemController {
	return SystemController{app: app}
}

type SystemController struct {
	app application.SystemsApplication
}

type (
	systemForm struct {
		Label        string `json:"label"`
		AdminGroup   string `json:"adminGroup"`
		ContactName  string `json:"contactName"`
		ContactEmail string `json:"contactEmail"`
		Online       *bool  `json:"online"`

		Country string `json:"country"`
		Region  string `json:"region"`
		City    string `json:"city"`
	}
	systemResponse struct {
		domain.System
		DisplayName string                  `json:"displayName"`
		Resources   []domain.SystemResource `json:"resources,omitempty"`
	}
	createdResponse struct {
		ID string `json:"id"`
	}
)

func (sc SystemController) Index() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := sc.app.ListSystems.H(c.Request().Context(), application.ListSystemsQuery{})
		if err != nil {
			return httpError(err)
		}

		systems := make([]systemResponse, 0, len(res.Systems))
		for _, s := range res.Systems {
			systems = append(systems, systemResponse{System: s, DisplayName: s.DisplayName()})
		}

		return c.JSON(http.StatusOK, systems)
	}
}

func (sc SystemController) Store() func(echo.Context) error {
	return func(c echo.Context) error {
		var form systemForm
		if err := c.Bind(&form); err != nil {
			return err //nolint:wrapcheck // echo.HTTPError
		}

		res, err := sc.app.CreateSystem.H(c.Request().Context(), application.CreateSystemRequest{
			UserID:       domain.UserID(mw.UserID(c.Request().Context())),
			Label:        form.Label,
			AdminGroup:   form.AdminGroup,
			ContactName:  form.ContactName,
			ContactEmail: form.ContactEmail,
			Offline:      form.Online != nil && !*form.Online,
			Country:      form.Country,
			Region:       form.Region,
			City:         form.City,
		})
		if err != nil {
			return httpError(err)
		}

		c.Response().Header().Set(echo.HeaderLocation, c.Echo().Reverse("systems.show", res.SystemID))

		return c.JSON(http.StatusCreated, createdResponse{ID: string(res.SystemID)})
	}
}

func (sc SystemController) Show() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := sc.app.ShowSystem.H(c.Request().Context(), application.ShowSystemQuery{
			SystemID: domain.ID(c.Param("id")),
		})
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, systemResponse{
			System:      res.System,
			DisplayName: res.DisplayName,
			Resources:   res.Resources,
		})
	}
}

func (sc SystemController) Update() func(echo.Context) error {
	return func(c echo.Context) error {
		var form systemForm
		if err := c.Bind(&form); err != nil {
			return err //nolint:wrapcheck // echo.HTTPError
		}

		err := sc.app.UpdateSystem.H(c.Request().Context(), application.UpdateSystemCommand{
			UserID:       domain.UserID(mw.UserID(c.Request().Context())),
			SystemID:     domain.ID(c.Param("id")),
			Label:        form.Label,
			AdminGroup:   form.AdminGroup,
			ContactName:  form.ContactName,
			ContactEmail: form.ContactEmail,
			Online:       form.Online == nil || *form.Online,
			Country:      form.Country,
			Region:       form.Region,
			City:         form.City,
		})
		if err != nil {
			return httpError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

func (sc SystemController) Delete() func(echo.Context) error {
	return func(c echo.Context) error {
		err := sc.app.DeleteSystem.H(c.Request().Context(), application.DeleteSystemCommand{
			UserID:   domain.UserID(mw.UserID(c.Request().Context())),
			SystemID: domain.ID(c.Param("id")),
		})
		if err != nil {
			return httpError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

// Preview shows the location a system with the given label would get.
func (sc SystemController) Preview() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := sc.app.PreviewLocation.H(c.Request().Context(), application.PreviewLocationQuery{
			Label:   c.QueryParam("label"),
			Country: c.QueryParam("country"),
			Region:  c.QueryParam("region"),
			City:    c.QueryParam("city"),
		})
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, echo.Map{
			"location":    res.Location,
			"displayName": res.DisplayName,
		})
	}
}

// httpError maps the errors of this Context to their status code.
// All other errors are handled by mw.ErrorHandler.
func httpError(err error) error {
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &vErr):
		msg := vErr.Err.Error()
		if errors.Is(vErr, domain.ErrUnresolvableHostname) {
			msg = domain.ErrUnresolvableHostname.Error()
		}

		return mw.ValidationFailed(map[string]string{vErr.Field: msg})
	case errors.Is(err, domain.ErrCoordinateExtraction), errors.Is(err, domain.ErrCountryCodeExtraction):
		return echo.NewHTTPError(http.StatusBadGateway, "location service returned an invalid result").SetInternal(err)
	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, "location lookup timed out").SetInternal(err)
	case errors.Is(err, domain.ErrSystemNotFound),
		errors.Is(err, domain.ErrResourceNotFound),
		errors.Is(err, domain.ErrProjectNotFound):
		return echo.NewHTTPError(http.StatusNotFound, rootMessage(err)).SetInternal(err)
	case errors.Is(err, domain.ErrSystemAlreadyExists), errors.Is(err, domain.ErrResourceExists):
		return echo.NewHTTPError(http.StatusConflict, rootMessage(err)).SetInternal(err)
	case errors.Is(err, domain.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error()).SetInternal(err)
	default:
		return err
	}
}

func rootMessage(err error) string {
	for _, known := range []error{
		domain.ErrSystemNotFound, domain.ErrResourceNotFound, domain.ErrProjectNotFound,
		domain.ErrSystemAlreadyExists, domain.ErrResourceExists,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return err.Error()
}
