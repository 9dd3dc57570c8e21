package listing

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnknownFilter   = errors.New("listing: unknown filter axis")
	ErrUnknownSort     = errors.New("listing: unknown sort key")
	ErrInvalidPageSize = errors.New("listing: page size must be positive")
	ErrUnknownScreen   = errors.New("listing: unknown screen")
	ErrStaleResponse   = errors.New("listing: response superseded by a newer request")
	errMissingSource   = errors.New("listing: data source not configured")
)

// Kind classifies failures that reach the user.
type Kind string

const (
	KindFetch      Kind = "fetch"
	KindValidation Kind = "validation"
	KindExport     Kind = "export"
	KindForbidden  Kind = "forbidden"
)

// Error carries the failure kind plus the HTTP status that produced it, if any.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Classify maps an HTTP status to a failure kind.
func Classify(status int) Kind {
	switch status {
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindFetch
	}
}

// KindOf extracts the kind of err, defaulting to KindFetch.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) && le.Kind != "" {
		return le.Kind
	}
	return KindFetch
}

// StatusOf returns the HTTP status attached to err, if any.
func StatusOf(err error) int {
	var le *Error
	if errors.As(err, &le) {
		return le.Status
	}
	return 0
}

// IsForbidden reports whether err came from an authorization failure.
func IsForbidden(err error) bool {
	return KindOf(err) == KindForbidden
}
