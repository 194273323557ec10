package apperr

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrRateLimited         = errors.New("rate limited")
	ErrCreditsExhausted    = errors.New("credits exhausted")
	ErrAdvisoryUnavailable = errors.New("advisory unavailable")
)
