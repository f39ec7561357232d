package repositories

import "errors"

// Sentinel errors returned by repositories. Callers test with errors.Is;
// the wrapped messages carry the entity and id.
var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a write hit a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)
