package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when an entity already has a mutation in flight
	ErrBusy = errors.New("entity has a pending mutation")

	// ErrNotFound is returned when the entity to mutate is not in the snapshot
	ErrNotFound = errors.New("entity not found")

	// ErrSuperseded is returned by CommitFetch when a newer fetch started
	ErrSuperseded = errors.New("fetch superseded")

	// ErrModified is returned by CommitFetch when the snapshot was written
	// while the fetch was in flight; the fetched items may predate it
	ErrModified = errors.New("snapshot modified during fetch")
)

// Op names a mutation kind
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// MutationError reports a failed mutation after its optimistic change
// was rolled back.
//
// The underlying error can be accessed via errors.Unwrap.
type MutationError struct {
	Op       Op
	Resource string
	Key      string
	cause    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Resource, e.Key, e.cause)
}

func (e *MutationError) Unwrap() error { return e.cause }
