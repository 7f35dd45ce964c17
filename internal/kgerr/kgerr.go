// Package kgerr centralises the error taxonomy used across the core: a
// small set of sentinel kinds, each carrying a human-readable message and
// recovery hints, wrapped the way the rest of the codebase wraps lower
// errors with fmt.Errorf("...: %w", err).
package kgerr

import (
	"errors"
	"fmt"
)

// Kind is one of the taxonomy's sentinel error kinds from §7.
type Kind string

const (
	EntityNotFound      Kind = "EntityNotFound"
	RelationNotFound    Kind = "RelationNotFound"
	DuplicateEntity     Kind = "DuplicateEntity"
	DuplicateRelation   Kind = "DuplicateRelation"
	ValidationFailure   Kind = "ValidationFailure"
	CycleDetected       Kind = "CycleDetected"
	StorageRead         Kind = "StorageRead"
	StorageWrite        Kind = "StorageWrite"
	StorageCorrupted    Kind = "StorageCorrupted"
	InvalidQuery        Kind = "InvalidQuery"
	SearchFailed        Kind = "SearchFailed"
	IndexNotReady       Kind = "IndexNotReady"
	EmbeddingFailed     Kind = "EmbeddingFailed"
	OperationCancelled  Kind = "OperationCancelled"
	ImportError         Kind = "ImportError"
	ExportError         Kind = "ExportError"
	FileOperation       Kind = "FileOperation"
	PathTraversal       Kind = "PathTraversal"
	InvalidConfig       Kind = "InvalidConfig"
	MissingDependency   Kind = "MissingDependency"
	UnsupportedFeature  Kind = "UnsupportedFeature"
	InvalidState        Kind = "InvalidState"
)

// hints maps each kind to recovery advice surfaced alongside the error.
var hints = map[Kind][]string{
	EntityNotFound:     {"check the entity name for typos", "list entities to confirm it was created"},
	RelationNotFound:   {"check from/to/relationType for typos"},
	DuplicateEntity:    {"use a different name or update the existing entity instead"},
	DuplicateRelation:  {"the (from, to, relationType) triple already exists; update it instead"},
	ValidationFailure:  {"check required fields and length/range limits"},
	CycleDetected:      {"verify ancestors before setting parent"},
	StorageRead:        {"check the file exists and is readable"},
	StorageWrite:       {"check permissions and disk space"},
	StorageCorrupted:   {"inspect the log for unparseable lines; corrupted trailing lines are discarded automatically"},
	InvalidQuery:       {"check boolean operator syntax and field qualifiers"},
	SearchFailed:       {"retry with a narrower query"},
	IndexNotReady:      {"build the index before querying it"},
	EmbeddingFailed:    {"check the embedding provider's availability and request size"},
	OperationCancelled: {"the operation was cancelled before completion"},
	ImportError:        {"check the import format and size limits"},
	ExportError:        {"check the export format and destination"},
	FileOperation:      {"check the file path and permissions"},
	PathTraversal:      {"the path escapes the allowed base directory"},
	InvalidConfig:      {"check configuration keys against the documented schema"},
	MissingDependency:  {"the requested feature requires an unavailable collaborator"},
	UnsupportedFeature: {"this format or feature is not implemented"},
	InvalidState:       {"check the transaction's current state before calling begin/commit/rollback"},
}

// Error is a taxonomy error: a Kind, a message, and recovery hints.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Hints returns the recovery hints for this error's kind.
func (e *Error) Hints() []string { return hints[e.Kind] }

// New builds a Kind error with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a Kind error that wraps a lower-level error, mirroring the
// codebase's fmt.Errorf("...: %w", err) convention but attaching a kind and
// hints to the result.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return New(kind, format, args...)
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// Is reports whether err (or anything it wraps) has the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, or "" if err isn't a taxonomy error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
