// Package domain contains the projects hosted by mirrors and the permissions on them.
package domain

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

type (
	ID     string
	UserID string
)

// Project is a software project, distributed by the mirrors of its systems.
type Project struct {
	ID          ID     `db:"id"          json:"id"`
	UserID      UserID `db:"user_id"     json:"userID"`
	Label       string `db:"label"       json:"label"`
	Name        string `db:"name"        json:"name"`
	Description string `db:"description" json:"description"`
	URL         string `db:"url"         json:"url"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// LabelTag is the validation tag of a project label.
const LabelTag = "projectlabel"

// LabelMessage explains a label that does not match LabelTag.
const LabelMessage = "Label must start with a letter and contain only letters, numbers, dashes, dots and underscores."

var labelRE = regexp.MustCompile(`^[a-zA-Z][\.\w\-]+$`)

// IsValidLabel reports if label is a valid project label, ignoring its length.
func IsValidLabel(label string) bool {
	return labelRE.MatchString(label)
}

// NewValidator returns a validator knowing the LabelTag.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.RegisterValidation(LabelTag, func(fl validator.FieldLevel) bool {
		return IsValidLabel(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("could not register %s validation: %v", LabelTag, err))
	}

	return validate
}

type Permission string

const (
	ChangeProject Permission = "change_project"
	DeleteProject Permission = "delete_project"
)

// OwnerPermissions are granted to the user creating a project.
func OwnerPermissions() []Permission {
	return []Permission{ChangeProject, DeleteProject}
}

// ObjectType of all grants on projects.
const ObjectType = "project"

type GrantID string

// Grant allows a user a Permission on a single object.
type Grant struct {
	ID         GrantID    `db:"id"`
	Permission Permission `db:"permission"`
	UserID     UserID     `db:"user_id"`
	ObjectType string     `db:"object_type"`
	ObjectID   string     `db:"object_id"`
}

// NewGrant allows userID the permission on project.
func NewGrant(id GrantID, permission Permission, userID UserID, project ID) Grant {
	return Grant{
		ID:         id,
		Permission: permission,
		UserID:     userID,
		ObjectType: ObjectType,
		ObjectID:   string(project),
	}
}

// Authorize returns ErrForbidden, if userID is not granted permission on project.
func Authorize(ctx context.Context, grants GrantRepository, userID UserID, permission Permission, project ID) error {
	ok, err := grants.Has(ctx, userID, permission, ObjectType, string(project))
	if err != nil {
		return fmt.Errorf("could not check permission: %w", err)
	}

	if !ok {
		return fmt.Errorf("%w: user %s has no %s on project %s", ErrForbidden, userID, permission, project)
	}

	return nil
}
