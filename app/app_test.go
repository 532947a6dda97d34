package app_test

import (
	"context"
)

var ctx = context.Background()

type (
	request  struct{ Hostname string }
	response struct{ Location string }
)

type structWithValidationTags struct {
	Label string `validate:"required,hostname_rfc1123"`
	Email string `validate:"omitempty,email"`
}
