package entity

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a unit failure. Kinds decide what the orchestrator
// records and whether the next scheduled run is expected to self-heal.
type ErrorKind string

const (
	// KindAuth marks an expired or revoked credential; the bundle is
	// flagged for reconnect and the unit is skipped.
	KindAuth ErrorKind = "auth"
	// KindRateLimit marks a provider quota hit; the unit is abandoned for
	// this run and retried on the next schedule.
	KindRateLimit ErrorKind = "rate_limit"
	// KindNetwork marks a transport failure or timeout.
	KindNetwork ErrorKind = "network"
	// KindParse marks a single message that matched a detector but failed
	// required-field extraction.
	KindParse ErrorKind = "parse"
	// KindConfig marks a feature that is not configured for the unit; the
	// unit is silently skipped and not logged as a failure.
	KindConfig ErrorKind = "config"
)

// ClassifiedError carries an ErrorKind alongside the underlying error.
type ClassifiedError struct {
	Kind ErrorKind
	Err  error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Classify wraps err with a kind. A nil err returns nil.
func Classify(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Kind: kind, Err: err}
}

// Classifyf wraps a formatted error with a kind.
func Classifyf(kind ErrorKind, format string, args ...interface{}) error {
	return &ClassifiedError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the kind from err, defaulting to network for plain
// transport-level errors that were never classified.
func KindOf(err error) ErrorKind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindNetwork
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *ClassifiedError
	return errors.As(err, &ce) && ce.Kind == kind
}
