package domain

import (
	"context"
)

type Repository interface {
	NextID(ctx context.Context) (ID, error)

	Read(ctx context.Context, id ID) (System, error)
	Save(ctx context.Context, system System) error
	DeleteByID(ctx context.Context, id ID) error

	// All returns all systems ordered by label.
	All(ctx context.Context) ([]System, error)
	FindByLabel(ctx context.Context, label string) (System, error)
	ExistsByLabel(ctx context.Context, label string) (bool, error)
}

type ResourceRepository interface {
	NextID(ctx context.Context) (ResourceID, error)

	Read(ctx context.Context, id ResourceID) (SystemResource, error)
	Create(ctx context.Context, resource SystemResource) error
	DeleteByID(ctx context.Context, id ResourceID) error

	FindBySystem(ctx context.Context, systemID ID) ([]SystemResource, error)
	DeleteBySystem(ctx context.Context, systemID ID) error

	// Mirrors returns the mirror list entries of a project: all resources included in the mirror list,
	// that are hosted on an online system. They are ordered by the system's label.
	Mirrors(ctx context.Context, projectID ProjectID) ([]Mirror, error)
}

// Mirror is a resource together with the system it is hosted on.
type Mirror struct {
	System   System
	Resource SystemResource
}

// URLs returns the address of the mirror for each protocol it supports.
// If protocol is given, only that protocol is returned.
func (m Mirror) URLs(protocol Protocol) []string {
	urls := []string{}

	for _, p := range Protocols() {
		if protocol != "" && p != protocol {
			continue
		}

		if m.Resource.Supports(p) {
			urls = append(urls, m.Resource.URL(m.System, p))
		}
	}

	return urls
}
