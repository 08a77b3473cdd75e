package repositories

import "errors"

// Sentinel errors shared by all repository implementations. Callers branch
// with errors.Is instead of matching message text.
var (
	// ErrNotFound is returned when a record does not exist or is not owned
	// by the requesting user.
	ErrNotFound = errors.New("record not found")
)
