package app

import (
	"context"

	"github.com/go-playground/validator/v10"
)

type validatedKey struct{}

// PassedValidation reports whether the input of the current use case passed the validation decorator.
// Use it to make sure the decorator is set up, before relying on valid input in the business logic.
func PassedValidation(ctx context.Context) bool {
	v, _ := ctx.Value(validatedKey{}).(bool)

	return v
}

// NewValidatedRequest validates the struct tags of each Req, before calling req.
// The validation error is returned unwrapped, so callers can inspect validator.ValidationErrors.
func NewValidatedRequest[Req any, Res any](validate *validator.Validate, req Request[Req, Res]) Request[Req, Res] {
	validate = orDefault(validate)

	return RequestFunc[Req, Res](func(ctx context.Context, in Req) (Res, error) {
		return validated(ctx, validate, in, req.H)
	})
}

func NewValidatedCommand[C any](validate *validator.Validate, cmd Command[C]) Command[C] {
	validate = orDefault(validate)

	return CommandFunc[C](func(ctx context.Context, in C) error {
		_, err := validated(ctx, validate, in, noResult(cmd.H))

		return err
	})
}

func NewValidatedQuery[Q any, Res any](validate *validator.Validate, query Query[Q, Res]) Query[Q, Res] {
	validate = orDefault(validate)

	return QueryFunc[Q, Res](func(ctx context.Context, in Q) (Res, error) {
		return validated(ctx, validate, in, query.H)
	})
}

func orDefault(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		return validator.New(validator.WithRequiredStructEnabled())
	}

	return validate
}

func validated[In any, Out any](
	ctx context.Context,
	validate *validator.Validate,
	in In,
	next handle[In, Out],
) (Out, error) {
	if err := validate.StructCtx(ctx, in); err != nil {
		return *new(Out), err //nolint:wrapcheck // validation error is returned on purpose
	}

	return next(context.WithValue(ctx, validatedKey{}, true), in)
}
