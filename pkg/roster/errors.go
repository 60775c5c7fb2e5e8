package roster

import (
	"errors"
	"fmt"
	"time"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/calendar"
)

var (
	// ErrArchiveCorruption is returned when more than one document shares a week anchor.
	ErrArchiveCorruption = errors.New("archive corruption")

	// ErrNoScheduleAvailable is returned when a site has no document at all.
	ErrNoScheduleAvailable = errors.New("no schedule available")

	// ErrWeekNotFound is returned when a specific week has no document.
	ErrWeekNotFound = errors.New("week not found")

	// ErrMalformedNotice marks a gap notice that lacks its day or shift. It is only
	// ever reported through a diagnostic callback, never returned.
	ErrMalformedNotice = errors.New("malformed gap notice")
)

// ArchiveCorruptionError identifies the duplicated anchor.
type ArchiveCorruptionError struct {
	SiteID  string
	Anchor  time.Time
	Matches int
}

func (e *ArchiveCorruptionError) Error() string {
	return fmt.Sprintf("archive corruption: site %q has %d documents for week %s",
		e.SiteID, e.Matches, calendar.Format(e.Anchor))
}

func (e *ArchiveCorruptionError) Unwrap() error { return ErrArchiveCorruption }

// NoScheduleError names the site whose archive was empty.
type NoScheduleError struct {
	SiteID string
}

func (e *NoScheduleError) Error() string {
	return fmt.Sprintf("no schedule available for site %q", e.SiteID)
}

func (e *NoScheduleError) Unwrap() error { return ErrNoScheduleAvailable }

// WeekNotFoundError names the requested week.
type WeekNotFoundError struct {
	SiteID string
	Anchor time.Time
}

func (e *WeekNotFoundError) Error() string {
	return fmt.Sprintf("site %q has no schedule for week %s", e.SiteID, calendar.Format(e.Anchor))
}

func (e *WeekNotFoundError) Unwrap() error { return ErrWeekNotFound }

// MalformedNoticeError describes a dropped gap notice.
type MalformedNoticeError struct {
	Index  int
	Field  string
	Notice string
}

func (e *MalformedNoticeError) Error() string {
	return fmt.Sprintf("malformed gap notice #%d: bad %s (%s)", e.Index, e.Field, e.Notice)
}

func (e *MalformedNoticeError) Unwrap() error { return ErrMalformedNotice }

// IsNotFound reports whether err means there is nothing to show.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoScheduleAvailable) || errors.Is(err, ErrWeekNotFound)
}

// IsClientError reports whether err was caused by caller input.
func IsClientError(err error) bool {
	return errors.Is(err, calendar.ErrInvalidDate)
}
