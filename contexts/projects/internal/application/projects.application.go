// Package application contains the use cases of the projects Context.
package application

import (
	"github.com/go-arrower/mirrorhub/app"
	"github.com/go-arrower/mirrorhub/contexts/projects/internal/domain"
)

type ProjectsApplication struct {
	CreateProject app.Request[CreateProjectRequest, CreateProjectResponse]
	UpdateProject app.Command[UpdateProjectCommand]
	DeleteProject app.Command[DeleteProjectCommand]
	ShowProject   app.Query[ShowProjectQuery, ShowProjectResponse]
	ListProjects  app.Query[ListProjectsQuery, ListProjectsResponse]
}

//nolint:gochecknoglobals // the validator caches struct information and is safe for concurrent use
var validate = domain.NewValidator()
