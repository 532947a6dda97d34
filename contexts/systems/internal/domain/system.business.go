// Package domain contains the mirror systems, their resources, and the resolution of their geographic location.
package domain

import (
	"fmt"
	"strings"
	"time"
)

type (
	ID         string
	UserID     string
	ResourceID string
	ProjectID  string
)

// System is a mirror host. Its Label is the DNS hostname it is reachable under.
type System struct {
	ID           ID     `db:"id"            json:"id"`
	UserID       UserID `db:"user_id"       json:"userID"`
	Label        string `db:"label"         json:"label"`
	AdminGroup   string `db:"admin_group"   json:"adminGroup"`
	ContactName  string `db:"contact_name"  json:"contactName"`
	ContactEmail string `db:"contact_email" json:"contactEmail"`
	Online       bool   `db:"online"        json:"online"`

	Location

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Location is the geographic metadata of a System.
// It is recomputed by the Resolver every time the System is saved.
type Location struct {
	IP          string   `db:"ip"           json:"ip"`
	Longitude   *float64 `db:"longitude"    json:"longitude,omitempty"`
	Latitude    *float64 `db:"latitude"     json:"latitude,omitempty"`
	Country     string   `db:"country"      json:"country"`
	CountryCode string   `db:"country_code" json:"countryCode"`
	City        string   `db:"city"         json:"city"`
	Region      string   `db:"region"       json:"region"`
	PostalCode  string   `db:"postal_code"  json:"postalCode"`
}

// DisplayName returns the label, followed by region and country, if they are known.
// A region without a country is not shown.
func (s System) DisplayName() string {
	switch {
	case s.Country != "" && s.Region != "":
		return fmt.Sprintf("%s (%s, %s)", s.Label, s.Region, s.Country)
	case s.Country != "":
		return fmt.Sprintf("%s (%s)", s.Label, s.Country)
	default:
		return s.Label
	}
}

func (s System) String() string {
	return s.DisplayName()
}

// IsOwnedBy reports if userID may change the System.
func (s System) IsOwnedBy(userID UserID) bool {
	return userID != "" && s.UserID == userID
}

// Protocol a mirror offers a project's files with.
type Protocol string

const (
	HTTP  Protocol = "http"
	HTTPS Protocol = "https"
	FTP   Protocol = "ftp"
	Rsync Protocol = "rsync"
)

func Protocols() []Protocol {
	return []Protocol{HTTP, HTTPS, FTP, Rsync}
}

// SystemResource is a project hosted on a System under Path.
type SystemResource struct {
	ID                  ResourceID `db:"id"                    json:"id"`
	UserID              UserID     `db:"user_id"               json:"userID"`
	SystemID            ID         `db:"system_id"             json:"systemID"`
	ProjectID           ProjectID  `db:"project_id"            json:"projectID"`
	Protocols           []string   `db:"protocols"             json:"protocols"`
	Path                string     `db:"path"                  json:"path"`
	IncludeInMirrorlist bool       `db:"include_in_mirrorlist" json:"includeInMirrorlist"`
}

// Supports reports if the resource is offered with protocol.
func (r SystemResource) Supports(protocol Protocol) bool {
	for _, p := range r.Protocols {
		if Protocol(p) == protocol {
			return true
		}
	}

	return false
}

// URL returns the address of the resource on system, e.g. https://mirror.example.org/pub/project.
func (r SystemResource) URL(system System, protocol Protocol) string {
	return fmt.Sprintf("%s://%s/%s", protocol, system.Label, strings.TrimPrefix(r.Path, "/"))
}
