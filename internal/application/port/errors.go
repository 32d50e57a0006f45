// Package port defines interfaces for external dependencies.
package port

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the subsystem. Callers match them with
// errors.Is so each failure kind stays distinguishable at the boundary.
var (
	// ErrEntryNotFound means neither top-level section of the persisted
	// store holds a record for the requested display.
	ErrEntryNotFound = errors.New("display entry not found in persisted store")

	// ErrAuthDenied means the privilege subsystem rejected the request.
	ErrAuthDenied = errors.New("administrator authorization denied")

	// ErrAuthCancelled means the user dismissed the authorization prompt.
	ErrAuthCancelled = errors.New("administrator authorization cancelled")

	// ErrConcurrentModification means the persisted store was rewritten by
	// another process between our read and our privileged write.
	ErrConcurrentModification = errors.New("persisted store changed since read")
)

// StoreReadError wraps a failure to read or decode the persisted store.
type StoreReadError struct {
	Path string
	Err  error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("read persisted store %s: %v", e.Path, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// StoreBuildError wraps a failure to derive a modified store document,
// most commonly ErrEntryNotFound.
type StoreBuildError struct {
	Err error
}

func (e *StoreBuildError) Error() string {
	return fmt.Sprintf("build modified store document: %v", e.Err)
}

func (e *StoreBuildError) Unwrap() error { return e.Err }

// WriteError wraps an I/O failure while committing the persisted store.
// Authorization failures are NOT WriteErrors; they surface as
// ErrAuthDenied / ErrAuthCancelled so callers can decide to re-prompt.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write persisted store %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReconnectError means the forced disconnect/reconnect cycle itself failed.
// The persisted store has already been written when this is returned.
type ReconnectError struct {
	Step string // "sleep" or "wake"
	Err  error
}

func (e *ReconnectError) Error() string {
	return fmt.Sprintf("forced display reconnect (%s): %v", e.Step, e.Err)
}

func (e *ReconnectError) Unwrap() error { return e.Err }
