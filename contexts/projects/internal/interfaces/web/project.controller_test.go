package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/mirrorhub/alog"
	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/application"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/interfaces/repository"
	"github.com/go-arrower/mirrorhub/mw"
)

func TestProjectController_Store(t *testing.T) {
	t.Parallel()

	t.Run("create project", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(application.ProjectsApplication{
			CreateProject: app.RequestFunc[application.CreateProjectRequest, application.CreateProjectResponse](
				func(_ context.Context, req application.CreateProjectRequest) (application.CreateProjectResponse, error) {
					assert.Equal(t, domain.UserID(userID), req.UserID)
					assert.Equal(t, "fedora", req.Label)
					assert.Equal(t, "Fedora Linux", req.Name)

					return application.CreateProjectResponse{ProjectID: projectID}, nil
				},
			),
		})

		rec := serve(e, http.MethodPost, "/projects", `{"label": "fedora", "name": "Fedora Linux"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"id": "`+projectID+`"}`, rec.Body.String())
		assert.Equal(t, "/projects/"+projectID, rec.Header().Get("Location"))
	})

	t.Run("user required", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(application.ProjectsApplication{})

		rec := serveAnonymous(e, http.MethodPost, "/projects")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid label", func(t *testing.T) {
		t.Parallel()

		projects, err := repository.NewProjectMemoryRepository()
		require.NoError(t, err)

		grants, err := repository.NewGrantMemoryRepository()
		require.NoError(t, err)

		e := newTestRouter(application.ProjectsApplication{
			CreateProject: application.NewCreateProjectRequestHandler(alog.NewNoop(), projects, grants),
		})

		rec := serve(e, http.MethodPost, "/projects", `{"label": "1fedora"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var body mw.ValidationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "validation failed", body.Message)
		assert.Equal(t, domain.LabelMessage, body.Fields["Label"])
		assert.Equal(t, "This field is required.", body.Fields["Name"])
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			err    error
			status int
			msg    string
		}{
			{fmt.Errorf("%w: fedora", domain.ErrProjectAlreadyExists), http.StatusConflict, "project already exists"},
			{errors.New("some error"), http.StatusInternalServerError, "Internal Server Error"},
		}

		for _, tt := range tests {
			t.Run(tt.msg, func(t *testing.T) {
				t.Parallel()

				e := newTestRouter(application.ProjectsApplication{
					CreateProject: app.TestFailureRequest[application.CreateProjectRequest, application.CreateProjectResponse](tt.err),
				})

				rec := serve(e, http.MethodPost, "/projects", `{"label": "fedora"}`)
				assert.Equal(t, tt.status, rec.Code)
				assert.JSONEq(t, `{"message": "`+tt.msg+`"}`, rec.Body.String())
			})
		}
	})
}

func TestProjectController_Index(t *testing.T) {
	t.Parallel()

	e := newTestRouter(application.ProjectsApplication{
		ListProjects: app.TestSuccessQuery[application.ListProjectsQuery](application.ListProjectsResponse{
			Projects: []domain.Project{{ID: projectID, Label: "fedora", Name: "Fedora"}},
		}),
	})

	rec := serveAnonymous(e, http.MethodGet, "/projects")
	assert.Equal(t, http.StatusOK, rec.Code)

	var projects []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "fedora", projects[0]["label"])
	assert.Equal(t, projectID, projects[0]["id"])
}

func TestProjectController_Show(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(application.ProjectsApplication{
			ShowProject: app.QueryFunc[application.ShowProjectQuery, application.ShowProjectResponse](
				func(_ context.Context, q application.ShowProjectQuery) (application.ShowProjectResponse, error) {
					assert.Equal(t, domain.ID(projectID), q.ProjectID)

					return application.ShowProjectResponse{Project: domain.Project{ID: projectID, Label: "fedora"}}, nil
				},
			),
		})

		rec := serveAnonymous(e, http.MethodGet, "/projects/"+projectID)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"label":"fedora"`)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(application.ProjectsApplication{
			ShowProject: app.TestFailureQuery[application.ShowProjectQuery, application.ShowProjectResponse](
				fmt.Errorf("could not get project: %w", domain.ErrProjectNotFound),
			),
		})

		rec := serveAnonymous(e, http.MethodGet, "/projects/"+projectID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"message": "project not found"}`, rec.Body.String())
	})
}

func TestProjectController_Update(t *testing.T) {
	t.Parallel()

	t.Run("update project", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(application.ProjectsApplication{
			UpdateProject: app.CommandFunc[application.UpdateProjectCommand](
				func(_ context.Context, cmd application.UpdateProjectCommand) error {
					assert.Equal(t, domain.UserID(userID), cmd.UserID)
					assert.Equal(t, domain.ID(projectID), cmd.ProjectID)
					assert.Equal(t, "https://fedoraproject.org", cmd.URL)

					return nil
				},
			),
		})

		rec := serve(e, http.MethodPut, "/projects/"+projectID,
			`{"label": "fedora", "name": "Fedora", "url": "https://fedoraproject.org"}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("forbidden", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(application.ProjectsApplication{
			UpdateProject: app.TestFailureCommand[application.UpdateProjectCommand](domain.ErrForbidden),
		})

		rec := serve(e, http.MethodPut, "/projects/"+projectID, `{"label": "fedora"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestProjectController_Delete(t *testing.T) {
	t.Parallel()

	t.Run("delete project", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(application.ProjectsApplication{
			DeleteProject: app.TestSuccessCommand[application.DeleteProjectCommand](),
		})

		rec := serve(e, http.MethodDelete, "/projects/"+projectID, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("user required", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(application.ProjectsApplication{})

		rec := serveAnonymous(e, http.MethodDelete, "/projects/"+projectID)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
