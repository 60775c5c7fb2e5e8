package solver

import (
	"errors"
	"fmt"
)

// ErrInvalidDocument is returned when a solver payload cannot become a schedule document.
var ErrInvalidDocument = errors.New("invalid schedule document")

// DocumentError points at the part of the payload that was rejected.
type DocumentError struct {
	SiteID string
	Field  string
	Reason string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("invalid schedule document for site %q: %s: %s", e.SiteID, e.Field, e.Reason)
}

func (e *DocumentError) Unwrap() error { return ErrInvalidDocument }

func reject(siteID, field, format string, args ...any) error {
	return &DocumentError{SiteID: siteID, Field: field, Reason: fmt.Sprintf(format, args...)}
}
