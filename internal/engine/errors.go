package engine

import (
	"errors"
	"fmt"
)

// BuildError represents a tree-build contract breach detected by the
// driver layer.
//
// Build errors include:
//   - Scope mismatch: a view operation issued outside a container scope,
//     or an exit from the root scope
//   - Unknown references: query names, directive types, or local targets
//     that were never declared
//   - Replay mismatch: a replayed refresh produced a different result
//     digest than the recorded one
//
// The query core itself never returns errors - its invariants are debug
// assertions. BuildError is the driver's error surface for scripted and
// replayed builds, where malformed input is a real runtime possibility.
type BuildError struct {
	// Code identifies the error category.
	Code BuildErrorCode

	// Message is a human-readable description.
	Message string

	// Query identifies the affected query, when one is involved.
	Query string

	// Details contains additional context.
	Details map[string]string
}

// BuildErrorCode categorizes build errors.
type BuildErrorCode string

const (
	// ErrCodeScopeMismatch indicates an operation issued in the wrong scope.
	ErrCodeScopeMismatch BuildErrorCode = "SCOPE_MISMATCH"

	// ErrCodeInvalidQuery indicates a malformed query declaration.
	ErrCodeInvalidQuery BuildErrorCode = "INVALID_QUERY"

	// ErrCodeDuplicateQuery indicates a query name declared twice.
	ErrCodeDuplicateQuery BuildErrorCode = "DUPLICATE_QUERY"

	// ErrCodeUnknownQuery indicates a reference to an undeclared query.
	ErrCodeUnknownQuery BuildErrorCode = "UNKNOWN_QUERY"

	// ErrCodeUnknownDirective indicates a local name targeting a directive
	// the node does not declare.
	ErrCodeUnknownDirective BuildErrorCode = "UNKNOWN_DIRECTIVE"

	// ErrCodeUnknownEvent indicates a journal event the engine cannot apply.
	ErrCodeUnknownEvent BuildErrorCode = "UNKNOWN_EVENT"

	// ErrCodeReplayMismatch indicates replay diverged from the recording.
	ErrCodeReplayMismatch BuildErrorCode = "REPLAY_MISMATCH"
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("%s: %s (query=%s)", e.Code, e.Message, e.Query)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsScopeMismatch returns true if the error is a scope mismatch.
// Uses errors.As to handle wrapped errors.
func IsScopeMismatch(err error) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == ErrCodeScopeMismatch
	}
	return false
}

// IsReplayMismatch returns true if the error is a replay divergence.
// Uses errors.As to handle wrapped errors.
func IsReplayMismatch(err error) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == ErrCodeReplayMismatch
	}
	return false
}

func newBuildError(code BuildErrorCode, format string, args ...any) *BuildError {
	return &BuildError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func newQueryError(code BuildErrorCode, query, format string, args ...any) *BuildError {
	return &BuildError{Code: code, Message: fmt.Sprintf(format, args...), Query: query}
}
