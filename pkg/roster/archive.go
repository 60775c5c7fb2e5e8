package roster

import (
	"fmt"
	"time"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/calendar"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

// Documents returns every document of the archive in lookup order: current, next,
// then previous newest first.
func Documents(a models.Archive) []*models.ScheduleDocument {
	docs := make([]*models.ScheduleDocument, 0, len(a.Previous)+2)
	if a.Current != nil {
		docs = append(docs, a.Current)
	}
	if a.Next != nil {
		docs = append(docs, a.Next)
	}
	for i := range a.Previous {
		docs = append(docs, &a.Previous[i])
	}
	return docs
}

// FindByAnchor returns the document for the week starting at anchor, or nil when the
// archive has none. More than one match is reported as corruption.
func FindByAnchor(a models.Archive, anchor time.Time) (*models.ScheduleDocument, error) {
	var found *models.ScheduleDocument
	matches := 0
	for _, doc := range Documents(a) {
		if calendar.SameDate(doc.WeekAnchor, anchor) {
			if found == nil {
				found = doc
			}
			matches++
		}
	}
	if matches > 1 {
		return nil, &ArchiveCorruptionError{SiteID: a.SiteID, Anchor: calendar.Date(anchor), Matches: matches}
	}
	return found, nil
}

// ValidateArchive checks the archive invariants: Sunday anchors, one document per
// anchor, bounded and newest-first history.
func ValidateArchive(a models.Archive) error {
	seen := make(map[string]int)
	for _, doc := range Documents(a) {
		if !calendar.IsAnchor(doc.WeekAnchor) {
			return fmt.Errorf("document %s: week anchor %s is not a Sunday", doc.ID, calendar.Format(doc.WeekAnchor))
		}
		seen[calendar.Format(doc.WeekAnchor)]++
	}
	for key, n := range seen {
		if n > 1 {
			anchor, _ := calendar.Parse(key)
			return &ArchiveCorruptionError{SiteID: a.SiteID, Anchor: anchor, Matches: n}
		}
	}
	if len(a.Previous) > models.MaxPrevious {
		return fmt.Errorf("site %q keeps %d previous documents, limit is %d", a.SiteID, len(a.Previous), models.MaxPrevious)
	}
	for i := 1; i < len(a.Previous); i++ {
		if a.Previous[i].GeneratedAt.After(a.Previous[i-1].GeneratedAt) {
			return fmt.Errorf("site %q: previous documents are not ordered newest first", a.SiteID)
		}
	}
	return nil
}
