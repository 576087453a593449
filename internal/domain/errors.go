package domain

import "errors"

var (
	// ErrInvalidQuery signals a caller error: both search fields empty.
	ErrInvalidQuery = errors.New("invalid query: title and author are both empty")
	// ErrIndexUnavailable signals a storage-level failure; callers treat it
	// as zero candidates for the failing call.
	ErrIndexUnavailable = errors.New("candidate index unavailable")
	// ErrArbiterFailure signals an arbiter call failure; callers treat it as
	// "no selection" with the error detail as the reason.
	ErrArbiterFailure = errors.New("arbiter failure")
)

// ReasonMaxRetries is the reasoning attached to the terminal not_found result
// once the retry bound is exhausted.
const ReasonMaxRetries = "max retries exceeded"
