package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the error type returned by every snapshot operation.
//
// Messages are written to be shown to the user as-is. Code identifies the
// category for programmatic handling; use errors.Is against the sentinel
// values below or CodeOf.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the file or store involved, if any.
	Path string

	// SnapshotID identifies the snapshot involved, if any.
	SnapshotID int64

	// Paths lists files not written by a partial restore.
	Paths []string

	// Err is the underlying cause.
	Err error
}

// ErrorCode categorizes snapshot errors.
type ErrorCode string

const (
	// CodeDocumentNotSaved: the document has no persisted path.
	CodeDocumentNotSaved ErrorCode = "DOCUMENT_NOT_SAVED"

	// CodeStoreUnwritable: the sidecar store cannot be opened or created.
	CodeStoreUnwritable ErrorCode = "STORE_UNWRITABLE"

	// CodeStoreSchemaMismatch: the store carries an unknown schema version.
	CodeStoreSchemaMismatch ErrorCode = "STORE_SCHEMA_MISMATCH"

	// CodeWriteFailure: a store transaction failed and was rolled back.
	CodeWriteFailure ErrorCode = "WRITE_FAILURE"

	// CodeUnreadableDependency: a file's bytes could not be obtained.
	CodeUnreadableDependency ErrorCode = "UNREADABLE_DEPENDENCY"

	// CodeSnapshotNotFound: no snapshot with the given ID.
	CodeSnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"

	// CodePartialRestore: some restore writes failed after others succeeded.
	CodePartialRestore ErrorCode = "PARTIAL_RESTORE"

	// CodeCorruptBlob: stored bytes no longer match their digest.
	CodeCorruptBlob ErrorCode = "CORRUPT_BLOB"

	// CodeInvalidIdentity: a stored identity cannot be mapped to a path.
	CodeInvalidIdentity ErrorCode = "INVALID_IDENTITY"
)

// Sentinels for errors.Is. Only the Code is compared.
var (
	ErrDocumentNotSaved     = &Error{Code: CodeDocumentNotSaved}
	ErrStoreUnwritable      = &Error{Code: CodeStoreUnwritable}
	ErrStoreSchemaMismatch  = &Error{Code: CodeStoreSchemaMismatch}
	ErrWriteFailure         = &Error{Code: CodeWriteFailure}
	ErrUnreadableDependency = &Error{Code: CodeUnreadableDependency}
	ErrSnapshotNotFound     = &Error{Code: CodeSnapshotNotFound}
	ErrPartialRestore       = &Error{Code: CodePartialRestore}
	ErrCorruptBlob          = &Error{Code: CodeCorruptBlob}
	ErrInvalidIdentity      = &Error{Code: CodeInvalidIdentity}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.ToLower(strings.ReplaceAll(string(e.Code), "_", " "))
	}
	if len(e.Paths) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Paths, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// NewDocumentNotSaved reports a save or load on a document without a path on disk.
func NewDocumentNotSaved(path string) *Error {
	msg := "the document must be saved before snapshots can be taken"
	if path != "" {
		msg = fmt.Sprintf("document %s does not exist on disk; save it first", path)
	}
	return &Error{Code: CodeDocumentNotSaved, Message: msg, Path: path}
}

// NewStoreUnwritable reports a store that cannot be opened or created.
func NewStoreUnwritable(path string, err error) *Error {
	return &Error{
		Code:    CodeStoreUnwritable,
		Message: fmt.Sprintf("cannot open snapshot store %s", path),
		Path:    path,
		Err:     err,
	}
}

// NewSchemaMismatch reports a store stamped with an unknown schema version.
func NewSchemaMismatch(path string, found, want int) *Error {
	return &Error{
		Code:    CodeStoreSchemaMismatch,
		Message: fmt.Sprintf("snapshot store %s has schema version %d, expected %d", path, found, want),
		Path:    path,
	}
}

// NewWriteFailure reports a rolled-back store transaction.
func NewWriteFailure(op string, err error) *Error {
	return &Error{
		Code:    CodeWriteFailure,
		Message: fmt.Sprintf("%s failed; the snapshot store was left unchanged", op),
		Err:     err,
	}
}

// NewUnreadableDependency reports a file whose bytes could not be captured.
func NewUnreadableDependency(path string, err error) *Error {
	return &Error{
		Code:    CodeUnreadableDependency,
		Message: fmt.Sprintf("cannot read %s", path),
		Path:    path,
		Err:     err,
	}
}

// NewSnapshotNotFound reports an unknown snapshot ID.
func NewSnapshotNotFound(id int64) *Error {
	return &Error{
		Code:       CodeSnapshotNotFound,
		Message:    fmt.Sprintf("snapshot %d not found", id),
		SnapshotID: id,
	}
}

// NewPartialRestore reports the files a restore did not write.
func NewPartialRestore(id int64, notWritten []string, err error) *Error {
	return &Error{
		Code:       CodePartialRestore,
		Message:    fmt.Sprintf("snapshot %d was only partly restored; these files were not written", id),
		SnapshotID: id,
		Paths:      notWritten,
		Err:        err,
	}
}

// NewCorruptBlob reports a stored blob whose bytes fail verification.
func NewCorruptBlob(id int64, identity string, err error) *Error {
	return &Error{
		Code:       CodeCorruptBlob,
		Message:    fmt.Sprintf("snapshot %d: stored copy of %s is damaged", id, identity),
		SnapshotID: id,
		Path:       identity,
		Err:        err,
	}
}

// NewInvalidIdentity reports a stored identity that cannot be restored safely.
func NewInvalidIdentity(identity, reason string) *Error {
	return &Error{
		Code:    CodeInvalidIdentity,
		Message: fmt.Sprintf("cannot restore %q: %s", identity, reason),
		Path:    identity,
	}
}
