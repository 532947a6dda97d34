package app

import (
	"context"
	"errors"
)

// ErrUseCaseFailed is returned by the failing test handlers.
var ErrUseCaseFailed = errors.New("usecase failed")

// TestSuccessRequest returns a Request that always succeeds with res.
// Use it to test callers of use cases, e.g. web controllers.
func TestSuccessRequest[Req any, Res any](res Res) Request[Req, Res] {
	return RequestFunc[Req, Res](func(context.Context, Req) (Res, error) {
		return res, nil
	})
}

// TestFailureRequest returns a Request that always fails with err, or ErrUseCaseFailed if err is nil.
func TestFailureRequest[Req any, Res any](err error) Request[Req, Res] {
	if err == nil {
		err = ErrUseCaseFailed
	}

	return RequestFunc[Req, Res](func(context.Context, Req) (Res, error) {
		return *new(Res), err
	})
}

func TestSuccessCommand[C any]() Command[C] {
	return CommandFunc[C](func(context.Context, C) error {
		return nil
	})
}

func TestFailureCommand[C any](err error) Command[C] {
	if err == nil {
		err = ErrUseCaseFailed
	}

	return CommandFunc[C](func(context.Context, C) error {
		return err
	})
}

func TestSuccessQuery[Q any, Res any](res Res) Query[Q, Res] {
	return QueryFunc[Q, Res](func(context.Context, Q) (Res, error) {
		return res, nil
	})
}

func TestFailureQuery[Q any, Res any](err error) Query[Q, Res] {
	if err == nil {
		err = ErrUseCaseFailed
	}

	return QueryFunc[Q, Res](func(context.Context, Q) (Res, error) {
		return *new(Res), err
	})
}
