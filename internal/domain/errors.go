package domain

import "errors"

var (
	// ErrInvalidInput is returned before any search work when the request
	// references unknown coordinates or carries negative quantities.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStateCorruption reports a leg whose cargo was not restored after its
	// subtree was explored. It is a programming defect, never retried.
	ErrStateCorruption = errors.New("state corruption")

	// ErrProtocolViolation reports a malformed invocation message.
	ErrProtocolViolation = errors.New("protocol violation")
)
