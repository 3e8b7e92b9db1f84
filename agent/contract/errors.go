package contract

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnavailable         = errors.New("date not available")
	ErrUpstreamStatus      = errors.New("upstream returned error status")
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	ErrParseFailure        = errors.New("model output does not match expected shape")
	ErrValidation          = errors.New("validation failed")
)
