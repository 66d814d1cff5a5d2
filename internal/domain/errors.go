package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrMissingField         = errors.New("missing field")
	ErrFetchFailed          = errors.New("image fetch failed")
	ErrEmptyContent         = errors.New("fetched image content too small")
	ErrMalformedModelOutput = errors.New("malformed model output")
	ErrNoImageReturned      = errors.New("model returned no image")
	ErrProviderFailure      = errors.New("provider failure")
)
