// Package web is the JSON api of the projects Context.
package web

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/go-arrower/mirrorhub/contexts/projects/internal/application"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
	"github.com/go-arrower/mirrorhub/mw"
)

func NewProjectController(app application.ProjectsApplication) ProjectController {
	return ProjectController{app: app}
}

type ProjectController struct {
	app application.ProjectsApplication
}

type (
	projectForm struct {
		Label       string `json:"label"`
		Name        string `json:"name"`
		Description string `json:"description"`
		URL         string `json:"url"`
	}
	createdResponse struct {
		ID string `json:"id"`
	}
)

func (pc ProjectController) Index() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := pc.app.ListProjects.H(c.Request().Context(), application.ListProjectsQuery{})
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, res.Projects)
	}
}

func (pc ProjectController) Store() func(echo.Context) error {
	return func(c echo.Context) error {
		var form projectForm
		if err := c.Bind(&form); err != nil {
			return err //nolint:wrapcheck // echo.HTTPError
		}

		res, err := pc.app.CreateProject.H(c.Request().Context(), application.CreateProjectRequest{
			UserID:      domain.UserID(mw.UserID(c.Request().Context())),
			Label:       form.Label,
			Name:        form.Name,
			Description: form.Description,
			URL:         form.URL,
		})
		if err != nil {
			return httpError(err)
		}

		c.Response().Header().Set(echo.HeaderLocation, c.Echo().Reverse("projects.show", res.ProjectID))

		return c.JSON(http.StatusCreated, createdResponse{ID: string(res.ProjectID)})
	}
}

func (pc ProjectController) Show() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := pc.app.ShowProject.H(c.Request().Context(), application.ShowProjectQuery{
			ProjectID: domain.ID(c.Param("id")),
		})
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, res.Project)
	}
}

func (pc ProjectController) Update() func(echo.Context) error {
	return func(c echo.Context) error {
		var form projectForm
		if err := c.Bind(&form); err != nil {
			return err //nolint:wrapcheck // echo.HTTPError
		}

		err := pc.app.UpdateProject.H(c.Request().Context(), application.UpdateProjectCommand{
			UserID:      domain.UserID(mw.UserID(c.Request().Context())),
			ProjectID:   domain.ID(c.Param("id")),
			Label:       form.Label,
			Name:        form.Name,
			Description: form.Description,
			URL:         form.URL,
		})
		if err != nil {
			return httpError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

func (pc ProjectController) Delete() func(echo.Context) error {
	return func(c echo.Context) error {
		err := pc.app.DeleteProject.H(c.Request().Context(), application.DeleteProjectCommand{
			UserID:    domain.UserID(mw.UserID(c.Request().Context())),
			ProjectID: domain.ID(c.Param("id")),
		})
		if err != nil {
			return httpError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

// httpError maps the errors of this Context to their status code.
// All other errors are handled by mw.ErrorHandler.
func httpError(err error) error {
	var vErrs validator.ValidationErrors

	switch {
	case errors.As(err, &vErrs):
		return mw.ValidationFailed(fieldMessages(vErrs))
	case errors.Is(err, domain.ErrProjectNotFound):
		return echo.NewHTTPError(http.StatusNotFound, domain.ErrProjectNotFound.Error()).SetInternal(err)
	case errors.Is(err, domain.ErrProjectAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, domain.ErrProjectAlreadyExists.Error()).SetInternal(err)
	case errors.Is(err, domain.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error()).SetInternal(err)
	default:
		return err
	}
}

func fieldMessages(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))

	for _, e := range errs {
		switch e.Tag() {
		case domain.LabelTag:
			fields[e.Field()] = domain.LabelMessage
		case "required":
			fields[e.Field()] = "This field is required."
		default:
			fields[e.Field()] = "invalid value, failed on " + e.Tag()
		}
	}

	return fields
}
