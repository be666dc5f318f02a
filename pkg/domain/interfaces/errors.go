package interfaces

import "errors"

// Sentinel errors shared by all repository backends
var (
	// ErrNotFound indicates the referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrStatusConflict indicates a compare-and-set status update lost
	// against a concurrent transition
	ErrStatusConflict = errors.New("status conflict")

	// ErrProtected indicates a protected delete was refused because the
	// entity is still referenced
	ErrProtected = errors.New("entity is still referenced")
)
