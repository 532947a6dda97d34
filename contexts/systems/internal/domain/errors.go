package domain

import (
	"errors"
)

var (
	ErrInvalidHostname      = errors.New("invalid hostname")
	ErrUnresolvableHostname = errors.New("Unresolvable hostname.  Proper DNS required.")                        //nolint:stylecheck,revive // message is shown to users
	ErrLocationUnavailable  = errors.New("Unable to determine location from IP address, please enter manually") //nolint:stylecheck,revive,lll // message is shown to users

	// ErrCoordinateExtraction and ErrCountryCodeExtraction mean the region geocoder returned
	// a result that does not hold its contract.
	ErrCoordinateExtraction  = errors.New("unable to extract longitude and latitude")
	ErrCountryCodeExtraction = errors.New("unable to extract country_code")

	ErrSystemNotFound      = errors.New("system not found")
	ErrSystemAlreadyExists = errors.New("system already exists")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrResourceExists      = errors.New("project is already hosted on this system")
	ErrProjectNotFound     = errors.New("project not found")
	ErrForbidden           = errors.New("forbidden")
)

// ValidationError is an error caused by the input of a user.
// Field names the input the error belongs to, it is empty if the error is not caused by a single field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}

	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
