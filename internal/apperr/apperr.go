// Package apperr defines the error kinds surfaced to the desk user.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError is local and field scoped. It never reaches the network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// AuthError means the session token is missing or rejected. The user has to
// log in again; retrying does not help.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return "authentication required: " + e.Reason }

// NetworkError wraps a failed collaborator call or a success:false reply.
type NetworkError struct {
	Op         string
	StatusCode int
	// Message is the collaborator's own message, if it sent one.
	Message string
	// Retryable marks read-only calls the user may retry as-is.
	Retryable bool
	Err       error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// PartialDataError lists which of several parallel fetches failed.
type PartialDataError struct {
	Failed map[string]error
}

func (e *PartialDataError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for n := range e.Failed {
		names = append(names, n)
	}
	sort.Strings(names)
	return "partial data: failed to load " + strings.Join(names, ", ")
}

// Message returns the text to show the user for err: the collaborator's
// message for network errors, a fixed text for auth and validation errors,
// otherwise fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ne *NetworkError
	if errors.As(err, &ne) && ne.Message != "" {
		return ne.Message
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return "Your session has expired. Please log in again."
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "Please correct the highlighted fields"
	}
	return fallback
}

// IsRetryable reports whether the failed action can be retried unchanged.
func IsRetryable(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Retryable
}
