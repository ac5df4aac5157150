// Package errors defines the service error types used across docvault.
//
// Each error has a NewXxxError constructor and, where callers branch on the
// condition, an IsXxx predicate built on errors.As so wrapped errors are
// still recognized.
package errors

import (
	"errors"
	"fmt"
)

// HostUnavailableError is returned when the host document API is not present
// in the current execution context. It is fatal to the current call only.
type HostUnavailableError struct{}

func NewHostUnavailableError() *HostUnavailableError {
	return &HostUnavailableError{}
}

func (e *HostUnavailableError) Error() string {
	return "host document is not available; open or attach a document before accessing the vault"
}

func IsHostUnavailable(err error) bool {
	var target *HostUnavailableError
	return errors.As(err, &target)
}

// DatabaseUninitializedError is returned when Save is called before any
// load or create of the embedded database.
type DatabaseUninitializedError struct{}

func NewDatabaseUninitializedError() *DatabaseUninitializedError {
	return &DatabaseUninitializedError{}
}

func (e *DatabaseUninitializedError) Error() string {
	return "database has not been initialized"
}

func IsDatabaseUninitialized(err error) bool {
	var target *DatabaseUninitializedError
	return errors.As(err, &target)
}

// CorruptSnapshotError indicates the snapshot bytes do not parse as a valid
// database image. The store recovers from it by recreating an empty database,
// so it never reaches users.
type CorruptSnapshotError struct {
	Reason string
}

func NewCorruptSnapshotError(reason string) *CorruptSnapshotError {
	return &CorruptSnapshotError{Reason: reason}
}

func (e *CorruptSnapshotError) Error() string {
	return fmt.Sprintf("snapshot is not a valid database image: %s", e.Reason)
}

func IsCorruptSnapshot(err error) bool {
	var target *CorruptSnapshotError
	return errors.As(err, &target)
}

// QueryFailureError carries the engine diagnostic for a rejected statement.
// Statement batches are not implicitly transactional, so callers must not
// assume partial execution was rolled back.
type QueryFailureError struct {
	Message string
}

func NewQueryFailureError(cause error) *QueryFailureError {
	return &QueryFailureError{Message: cause.Error()}
}

func (e *QueryFailureError) Error() string {
	return fmt.Sprintf("query failed: %s", e.Message)
}

func IsQueryFailure(err error) bool {
	var target *QueryFailureError
	return errors.As(err, &target)
}

// RenderFailureError wraps an error from the page-rendering capability.
type RenderFailureError struct {
	Page int
	Err  error
}

func NewRenderFailureError(page int, err error) *RenderFailureError {
	return &RenderFailureError{Page: page, Err: err}
}

func (e *RenderFailureError) Error() string {
	return fmt.Sprintf("failed to render page %d: %v", e.Page, e.Err)
}

func (e *RenderFailureError) Unwrap() error {
	return e.Err
}

func IsRenderFailure(err error) bool {
	var target *RenderFailureError
	return errors.As(err, &target)
}

// NoContentError is returned when an upload task has no readable source bytes.
type NoContentError struct {
	FileName string
}

func NewNoContentError(fileName string) *NoContentError {
	return &NoContentError{FileName: fileName}
}

func (e *NoContentError) Error() string {
	return fmt.Sprintf("no file content available for upload %q", e.FileName)
}

func IsNoContent(err error) bool {
	var target *NoContentError
	return errors.As(err, &target)
}
