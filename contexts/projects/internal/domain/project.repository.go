package domain

import (
	"context"
)

type Repository interface {
	NextID(ctx context.Context) (ID, error)

	Read(ctx context.Context, id ID) (Project, error)
	Save(ctx context.Context, project Project) error
	DeleteByID(ctx context.Context, id ID) error

	// All returns all projects ordered by label.
	All(ctx context.Context) ([]Project, error)
	FindByLabel(ctx context.Context, label string) (Project, error)
	ExistsByLabel(ctx context.Context, label string) (bool, error)
}

// GrantRepository stores the permissions of users on single objects.
type GrantRepository interface {
	NextID(ctx context.Context) (GrantID, error)

	// Assign stores grant. Assigning an existing permission again is not an error.
	Assign(ctx context.Context, grant Grant) error
	Has(ctx context.Context, userID UserID, permission Permission, objectType string, objectID string) (bool, error)
	// RevokeAll removes the grants of all users on an object.
	RevokeAll(ctx context.Context, objectType string, objectID string) error
	FindByObject(ctx context.Context, objectType string, objectID string) ([]Grant, error)
}
