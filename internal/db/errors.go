package db

import "errors"

// ErrBadQuerySyntax signals a malformed full-text query; repositories treat
// it as zero results rather than propagating it.
var ErrBadQuerySyntax = errors.New("db: bad query syntax")

// Op constants map to Redis command names for error context.
const (
	OpSearch = "FT.SEARCH"
	OpPing   = "PING"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
