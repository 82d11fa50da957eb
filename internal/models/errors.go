package models

import "github.com/pkg/errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrBackend           = errors.New("backend request failed")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnauthenticated   = errors.New("unauthenticated")
)
