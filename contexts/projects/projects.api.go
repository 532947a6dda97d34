// Package projects is the intraprocess API of what this Context is exposing to other Contexts to use.
package projects

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("project not found")

// API is the api of the projects Context.
type API interface {
	ProjectByID(ctx context.Context, id ProjectID) (Project, error)
	ProjectByLabel(ctx context.Context, label string) (Project, error)
}

type ProjectID string

// Project is the public view on a hosted software project.
type Project struct {
	ID     ProjectID
	UserID string
	Label  string
	Name   string
	URL    string
}
