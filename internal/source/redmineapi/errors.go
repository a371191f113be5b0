package redmineapi

import "errors"

var (
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("redmine rejected the api key")

	// ErrNotFound indicates the requested resource does not exist or is
	// not visible to the api key's user.
	ErrNotFound = errors.New("redmine resource not found")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("redmine retry attempts exhausted")

	// ErrTimeout indicates the client timeout expired while the caller's
	// context was still live.
	ErrTimeout = errors.New("redmine request timed out")
)
