// Package systems is the intraprocess API of what this Context is exposing to other Contexts to use.
package systems

import (
	"context"
)

// API is the api of the systems Context.
type API interface {
	// PreviewLocation resolves the location of a host with the given hint, without saving anything.
	PreviewLocation(ctx context.Context, label string, hint LocationHint) (Location, error)
}

// LocationHint is given by the operator of a system. Without a country the location is
// looked up by the IP address of the host.
type LocationHint struct {
	Country string
	Region  string
	City    string
}

type Location struct {
	DisplayName string
	IP          string
	Longitude   *float64
	Latitude    *float64
	Country     string
	CountryCode string
	City        string
	Region      string
	PostalCode  string
}
