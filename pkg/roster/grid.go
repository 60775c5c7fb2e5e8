package roster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/calendar"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

// Mode selects how a grid is traversed.
type Mode string

const (
	ModeByDay  Mode = "byDay"
	ModeByWeek Mode = "byWeek"
)

// ParseMode reads a mode name. Empty means byDay; "wide" is accepted for byWeek.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeByDay):
		return ModeByDay, nil
	case string(ModeByWeek), "wide":
		return ModeByWeek, nil
	default:
		return "", fmt.Errorf("unknown grid mode %q", s)
	}
}

// Tag classifies a rendered worker entry.
type Tag string

const (
	TagOK      Tag = "ok"
	TagSelf    Tag = "self"
	TagMissing Tag = "missing"
)

const (
	vacantText       = "Empty"
	noWorkerSentinel = "No Worker"
)

// Entry is one rendered worker in a cell.
type Entry struct {
	WorkerID int    `json:"workerId"`
	Text     string `json:"text"`
	Tag      Tag    `json:"tag"`
}

// Cell is the intersection of a row and a column. Declared is false for combinations
// the document never staffed; those carry no entries.
type Cell struct {
	Column   string  `json:"column"`
	Declared bool    `json:"declared"`
	Entries  []Entry `json:"entries,omitempty"`
}

// Row is one position within a section.
type Row struct {
	Position string `json:"position"`
	Cells    []Cell `json:"cells"`
}

// Section is one table: a day in byDay mode, a shift in byWeek mode.
type Section struct {
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Grid is the display projection of a document.
type Grid struct {
	Mode      Mode      `json:"mode"`
	WeekRange string    `json:"weekRange"`
	Partial   bool      `json:"partial"`
	Sections  []Section `json:"sections"`
}

// DeclaredCells counts the cells that stand for a declared slot.
func (g Grid) DeclaredCells() int {
	n := 0
	for _, s := range g.Sections {
		for _, r := range s.Rows {
			for _, c := range r.Cells {
				if c.Declared {
					n++
				}
			}
		}
	}
	return n
}

// Resolve renders one worker id against the document's name snapshot.
func Resolve(workerID int, doc *models.ScheduleDocument, p models.WorkerProfile) Entry {
	name, ok := doc.Names[workerID]
	switch {
	case workerID < 0:
		return Entry{WorkerID: workerID, Text: vacantText, Tag: TagMissing}
	case !ok:
		return Entry{WorkerID: workerID, Text: fmt.Sprintf("ID: %d", workerID), Tag: TagMissing}
	case strings.HasPrefix(name, noWorkerSentinel):
		return Entry{WorkerID: workerID, Text: vacantText, Tag: TagMissing}
	case name == p.DisplayName:
		return Entry{WorkerID: workerID, Text: name, Tag: TagSelf}
	default:
		return Entry{WorkerID: workerID, Text: name, Tag: TagOK}
	}
}

// AssembleGrid builds the display projection of doc for the given worker.
func AssembleGrid(doc *models.ScheduleDocument, p models.WorkerProfile, mode Mode) Grid {
	g := Grid{
		Mode:      mode,
		WeekRange: calendar.FormatRange(doc.WeekAnchor),
		Partial:   doc.Status == models.StatusPartial,
	}
	days := gridDays(doc.Grid)
	if mode == ModeByWeek {
		g.Sections = byWeek(doc, p, days)
	} else {
		g.Mode = ModeByDay
		g.Sections = byDay(doc, p, days)
	}
	return g
}

func byDay(doc *models.ScheduleDocument, p models.WorkerProfile, days []models.Day) []Section {
	columns := make([]string, len(models.Shifts))
	for i, s := range models.Shifts {
		columns[i] = string(s)
	}
	sections := make([]Section, 0, len(days))
	for _, d := range days {
		positions := positionsWhere(doc.Grid, func(k models.SlotKey) bool { return k.Day == d })
		sec := Section{Title: string(d), Columns: columns}
		for _, pos := range positions {
			row := Row{Position: pos, Cells: make([]Cell, 0, len(models.Shifts))}
			for _, s := range models.Shifts {
				row.Cells = append(row.Cells, cell(doc, p, models.SlotKey{Day: d, Shift: s, Position: pos}, string(s)))
			}
			sec.Rows = append(sec.Rows, row)
		}
		sections = append(sections, sec)
	}
	return sections
}

func byWeek(doc *models.ScheduleDocument, p models.WorkerProfile, days []models.Day) []Section {
	columns := make([]string, len(days))
	for i, d := range days {
		columns[i] = string(d)
	}
	var sections []Section
	for _, s := range models.Shifts {
		positions := positionsWhere(doc.Grid, func(k models.SlotKey) bool { return k.Shift == s })
		if len(positions) == 0 {
			continue
		}
		sec := Section{Title: string(s), Columns: columns}
		for _, pos := range positions {
			row := Row{Position: pos, Cells: make([]Cell, 0, len(days))}
			for _, d := range days {
				row.Cells = append(row.Cells, cell(doc, p, models.SlotKey{Day: d, Shift: s, Position: pos}, string(d)))
			}
			sec.Rows = append(sec.Rows, row)
		}
		sections = append(sections, sec)
	}
	return sections
}

func cell(doc *models.ScheduleDocument, p models.WorkerProfile, k models.SlotKey, column string) Cell {
	workers, declared := doc.Grid[k]
	if !declared {
		return Cell{Column: column}
	}
	c := Cell{Column: column, Declared: true}
	if len(workers) == 0 {
		c.Entries = []Entry{{WorkerID: -1, Text: vacantText, Tag: TagMissing}}
		return c
	}
	c.Entries = make([]Entry, 0, len(workers))
	for _, id := range workers {
		c.Entries = append(c.Entries, Resolve(id, doc, p))
	}
	return c
}

func gridDays(g models.AssignmentGrid) []models.Day {
	present := make(map[models.Day]bool)
	for k := range g {
		present[k.Day] = true
	}
	var days []models.Day
	for _, d := range models.Days {
		if present[d] {
			days = append(days, d)
		}
	}
	return days
}

func positionsWhere(g models.AssignmentGrid, keep func(models.SlotKey) bool) []string {
	set := make(map[string]bool)
	for k := range g {
		if keep(k) {
			set[k.Position] = true
		}
	}
	out := make([]string, 0, len(set))
	for pos := range set {
		out = append(out, pos)
	}
	sort.Strings(out)
	return out
}
