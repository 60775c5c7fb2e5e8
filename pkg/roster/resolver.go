package roster

import (
	"fmt"
	"time"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/calendar"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

// Bucket names the archive bucket a document was taken from.
type Bucket string

const (
	BucketNext     Bucket = "next"
	BucketCurrent  Bucket = "current"
	BucketPrevious Bucket = "previous"
)

// WeekKey labels the selected document for the UI.
type WeekKey struct {
	Bucket Bucket
	Index  int
}

func (k WeekKey) String() string {
	if k.Bucket == BucketPrevious {
		return fmt.Sprintf("%s:%d", k.Bucket, k.Index)
	}
	return string(k.Bucket)
}

// MarshalText lets the key appear as a plain string in JSON.
func (k WeekKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Resolution is the document shown by default and how to label it.
type Resolution struct {
	Key      WeekKey
	Document *models.ScheduleDocument
	// WeekRange is the selected week formatted for display.
	WeekRange string
	// ContainsReference reports whether the reference date falls in the selected week.
	ContainsReference bool
}

// ResolveDisplayWeek picks the document to show by default. Availability beats calendar
// match: next, then current, then the most recent previous document. The reference date
// never changes the choice.
func ResolveDisplayWeek(a models.Archive, referenceDate time.Time) (Resolution, error) {
	var key WeekKey
	var doc *models.ScheduleDocument
	switch {
	case a.Next != nil:
		key, doc = WeekKey{Bucket: BucketNext}, a.Next
	case a.Current != nil:
		key, doc = WeekKey{Bucket: BucketCurrent}, a.Current
	case len(a.Previous) > 0:
		idx := 0
		for i := 1; i < len(a.Previous); i++ {
			if a.Previous[i].GeneratedAt.After(a.Previous[idx].GeneratedAt) {
				idx = i
			}
		}
		key, doc = WeekKey{Bucket: BucketPrevious, Index: idx}, &a.Previous[idx]
	default:
		return Resolution{}, &NoScheduleError{SiteID: a.SiteID}
	}
	return Resolution{
		Key:               key,
		Document:          doc,
		WeekRange:         calendar.FormatRange(doc.WeekAnchor),
		ContainsReference: calendar.Contains(doc.WeekAnchor, referenceDate),
	}, nil
}

// ResolveWeek selects the document of the week starting at anchor, labelled with the
// bucket it was found in.
func ResolveWeek(a models.Archive, anchor, referenceDate time.Time) (Resolution, error) {
	doc, err := FindByAnchor(a, anchor)
	if err != nil {
		return Resolution{}, err
	}
	if doc == nil {
		return Resolution{}, &WeekNotFoundError{SiteID: a.SiteID, Anchor: calendar.Date(anchor)}
	}

	key := WeekKey{Bucket: BucketPrevious}
	switch doc {
	case a.Next:
		key.Bucket = BucketNext
	case a.Current:
		key.Bucket = BucketCurrent
	default:
		for i := range a.Previous {
			if &a.Previous[i] == doc {
				key.Index = i
			}
		}
	}
	return Resolution{
		Key:               key,
		Document:          doc,
		WeekRange:         calendar.FormatRange(doc.WeekAnchor),
		ContainsReference: calendar.Contains(doc.WeekAnchor, referenceDate),
	}, nil
}
