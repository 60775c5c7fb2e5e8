// Package calendar implements the week arithmetic used to identify scheduling weeks.
//
// Dates are calendar dates, not instants: the year/month/day of a time.Time are read in
// its own location and the result is always midnight UTC. A week is identified by its
// anchor, the Sunday that starts it.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

const displayLayout = "02/01/2006"

// ErrInvalidDate is returned when a date string cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

var errNotAnchor = errors.New("weeks start on Sunday")

// DateError carries the offending input of a failed parse.
type DateError struct {
	Input string
	Err   error
}

func (e *DateError) Error() string {
	if errors.Is(e.Err, errNotAnchor) {
		return fmt.Sprintf("invalid date %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("invalid date %q", e.Input)
}

func (e *DateError) Unwrap() error { return ErrInvalidDate }

// Parse reads a YYYY-MM-DD or RFC 3339 string into a calendar date.
func Parse(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, &DateError{Input: s}
	}
	if t, err := time.Parse(DateLayout, v); err == nil {
		return Date(t), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, &DateError{Input: s, Err: err}
	}
	return Date(t), nil
}

// ParseAnchor reads a date that must be a week anchor.
func ParseAnchor(s string) (time.Time, error) {
	t, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if !IsAnchor(t) {
		return time.Time{}, &DateError{Input: s, Err: errNotAnchor}
	}
	return t, nil
}

// Date truncates t to midnight UTC of its own calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekAnchor returns the Sunday at or before t.
func WeekAnchor(t time.Time) time.Time {
	d := Date(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// NextWeek returns the anchor of the following week.
func NextWeek(anchor time.Time) time.Time { return Date(anchor).AddDate(0, 0, 7) }

// PrevWeek returns the anchor of the preceding week.
func PrevWeek(anchor time.Time) time.Time { return Date(anchor).AddDate(0, 0, -7) }

// IsAnchor reports whether t falls on a Sunday.
func IsAnchor(t time.Time) bool { return Date(t).Weekday() == time.Sunday }

// SameDate compares two times by calendar date only.
func SameDate(a, b time.Time) bool { return Date(a).Equal(Date(b)) }

// Contains reports whether t falls inside the week starting at anchor.
func Contains(anchor, t time.Time) bool {
	start := Date(anchor)
	d := Date(t)
	return !d.Before(start) && d.Before(start.AddDate(0, 0, 7))
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string { return Date(t).Format(DateLayout) }

// FormatRange renders the week starting at anchor as "DD/MM/YYYY - DD/MM/YYYY".
func FormatRange(anchor time.Time) string {
	start := Date(anchor)
	end := start.AddDate(0, 0, 6)
	return start.Format(displayLayout) + " - " + end.Format(displayLayout)
}
