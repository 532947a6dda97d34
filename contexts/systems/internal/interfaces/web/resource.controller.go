package web

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/go-arrower/mirrorhub/contexts/systems/internal/application"
	"github.com/go-arrower/mirrorhub/contexts/systems/internal/domain"
	"github.com/go-arrower/mirrorhub/mw"
)

func NewResourceController(app application.SystemsApplication) ResourceController {
	return ResourceController{app: app}
}

type ResourceController struct {
	app application.SystemsApplication
}

func (rc ResourceController) Store() func(echo.Context) error {
	type resourceForm struct {
		ProjectID           string   `json:"projectID"`
		Protocols           []string `json:"protocols"`
		Path                string   `json:"path"`
		IncludeInMirrorlist *bool    `json:"includeInMirrorlist"`
	}

	return func(c echo.Context) error {
		var form resourceForm
		if err := c.Bind(&form); err != nil {
			return err //nolint:wrapcheck // echo.HTTPError
		}

		res, err := rc.app.AddResource.H(c.Request().Context(), application.AddResourceRequest{
			UserID:    domain.UserID(mw.UserID(c.Request().Context())),
			SystemID:  domain.ID(c.Param("id")),
			ProjectID: domain.ProjectID(form.ProjectID),
			Protocols: form.Protocols,
			Path:      form.Path,
			Hidden:    form.IncludeInMirrorlist != nil && !*form.IncludeInMirrorlist,
		})
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusCreated, createdResponse{ID: string(res.ResourceID)})
	}
}

func (rc ResourceController) Delete() func(echo.Context) error {
	return func(c echo.Context) error {
		err := rc.app.RemoveResource.H(c.Request().Context(), application.RemoveResourceCommand{
			UserID:     domain.UserID(mw.UserID(c.Request().Context())),
			SystemID:   domain.ID(c.Param("id")),
			ResourceID: domain.ResourceID(c.Param("resourceID")),
		})
		if err != nil {
			return httpError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

// MirrorList returns the mirror urls of a project as JSON or, if asked for text/plain, one url per line.
func (rc ResourceController) MirrorList() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := rc.app.MirrorList.H(c.Request().Context(), application.MirrorListQuery{
			ProjectLabel: c.Param("label"),
			Protocol:     domain.Protocol(c.QueryParam("protocol")),
		})
		if err != nil {
			return httpError(err)
		}

		if c.Request().Header.Get(echo.HeaderAccept) == echo.MIMETextPlain {
			return c.String(http.StatusOK, strings.Join(res.URLs, "\n")+"\n")
		}

		return c.JSON(http.StatusOK, echo.Map{
			"project": res.Project,
			"mirrors": res.URLs,
		})
	}
}
