package services

import (
	"errors"
	"fmt"
)

// ErrNoRows marks a FetchError caused by an empty result rather than a failed query.
var ErrNoRows = errors.New("no rows")

// FetchError reports a failed or empty remote query.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StorageError reports a failed read or write of durable local storage.
type StorageError struct {
	Op  string // "read" or "write"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ValidationError reports caller misuse, such as adding an item without an id.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsRecoverable reports whether err is a fetch or storage failure the user can retry.
func IsRecoverable(err error) bool {
	var fe *FetchError
	var se *StorageError
	return errors.As(err, &fe) || errors.As(err, &se)
}
