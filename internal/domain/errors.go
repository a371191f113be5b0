package domain

import "errors"

var (
	// ErrInvalidInput indicates a caller violated an operation's precondition,
	// for example resolving an activity for a user holding no roles.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceFailure indicates the tracker data source failed to return
	// a record. It is propagated unchanged through the tree walk.
	ErrSourceFailure = errors.New("source failure")

	// ErrConfiguration indicates a malformed setting, such as an activity
	// override naming a role or activity the tracker does not know.
	ErrConfiguration = errors.New("configuration error")
)
