// Package solver turns the output of the external constraint solver into schedule
// documents. It never assigns workers itself.
package solver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/calendar"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

// Assignment is one solver variable and the worker it was bound to.
type Assignment struct {
	Position string `json:"position"`
	VarName  string `json:"var_name"`
	WorkerID int    `json:"worker_id"`
}

// WeekSchedule is the solver's day -> shift -> assignments tree.
type WeekSchedule map[models.Day]map[models.ShiftType][]Assignment

// Payload is the result document the solver publishes for one week.
type Payload struct {
	HotelName             string                `json:"hotelName"`
	GeneratedAt           string                `json:"generatedAt"`
	Status                models.ScheduleStatus `json:"status"`
	RelevantWeekStartDate string                `json:"relevantWeekStartDate" binding:"required"`
	Schedule              WeekSchedule          `json:"schedule" binding:"required"`
	IDToName              map[string]string     `json:"idToName"`
	Gaps                  []models.GapNotice    `json:"gaps,omitempty"`
}

var generatedAtLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// Intake builds documents from payloads.
type Intake struct {
	now   func() time.Time
	newID func() string
}

// NewIntake creates an intake stamping documents with the wall clock and random ids.
func NewIntake() *Intake {
	return &Intake{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Build validates p against the site and its staffing template and returns the document
// to publish. Template triples the solver left out are declared with nobody assigned.
// A nil template adds nothing.
func (in *Intake) Build(p *Payload, siteID string, template models.StaffingTemplate) (*models.ScheduleDocument, error) {
	if p.HotelName != "" && p.HotelName != siteID {
		return nil, reject(siteID, "hotelName", "payload is for %q", p.HotelName)
	}

	anchor, err := calendar.Parse(p.RelevantWeekStartDate)
	if err != nil {
		return nil, reject(siteID, "relevantWeekStartDate", "%v", err)
	}
	if !calendar.IsAnchor(anchor) {
		return nil, reject(siteID, "relevantWeekStartDate", "%s is a %s, weeks start on Sunday",
			calendar.Format(anchor), anchor.Weekday())
	}

	generatedAt, err := in.generatedAt(p.GeneratedAt)
	if err != nil {
		return nil, reject(siteID, "generatedAt", "%v", err)
	}

	names, err := nameSnapshot(p.IDToName)
	if err != nil {
		return nil, reject(siteID, "idToName", "%v", err)
	}

	grid, derived, err := assignmentGrid(p.Schedule, template)
	if err != nil {
		return nil, reject(siteID, "schedule", "%v", err)
	}
	for _, k := range template.Triples() {
		if _, ok := grid[k]; !ok {
			grid[k] = []int{}
		}
	}

	gaps := derived
	if p.Gaps != nil {
		if err := validateGaps(p.Gaps); err != nil {
			return nil, reject(siteID, "gaps", "%v", err)
		}
		gaps = append([]models.GapNotice(nil), p.Gaps...)
	}

	status := models.StatusFull
	if len(gaps) > 0 {
		status = models.StatusPartial
	}
	switch {
	case p.Status != "" && p.Status != models.StatusFull && p.Status != models.StatusPartial:
		return nil, reject(siteID, "status", "unknown status %q", p.Status)
	case p.Status == models.StatusFull && len(gaps) > 0:
		return nil, reject(siteID, "status", "reported full with %d unfilled slots", len(gaps))
	}

	return &models.ScheduleDocument{
		ID:          in.newID(),
		SiteID:      siteID,
		WeekAnchor:  anchor,
		GeneratedAt: generatedAt,
		Status:      status,
		Grid:        grid,
		Names:       names,
		GapNotices:  gaps,
	}, nil
}

func (in *Intake) generatedAt(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return in.now().UTC(), nil
	}
	for _, layout := range generatedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func nameSnapshot(raw map[string]string) (models.NameSnapshot, error) {
	names := make(models.NameSnapshot, len(raw))
	for key, name := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("worker id %q is not a number", key)
		}
		names[id] = name
	}
	return names, nil
}

// assignmentGrid flattens the day/shift tree. Dummy workers (negative ids) leave their
// slot declared but unfilled and produce one gap notice each.
func assignmentGrid(schedule WeekSchedule, template models.StaffingTemplate) (models.AssignmentGrid, []models.GapNotice, error) {
	grid := make(models.AssignmentGrid)
	var gaps []models.GapNotice
	for _, day := range sortedDays(schedule) {
		if !day.Valid() {
			return nil, nil, fmt.Errorf("unknown day %q", day)
		}
		shifts := schedule[day]
		for _, shift := range sortedShifts(shifts) {
			if !shift.Valid() {
				return nil, nil, fmt.Errorf("unknown shift %q on %s", shift, day)
			}
			for i, a := range shifts[shift] {
				position := strings.TrimSpace(a.Position)
				if position == "" {
					return nil, nil, fmt.Errorf("%s %s entry %d has no position", day, shift, i)
				}
				k := models.SlotKey{Day: day, Shift: shift, Position: position}
				if a.WorkerID < 0 {
					if _, ok := grid[k]; !ok {
						grid[k] = []int{}
					}
					gaps = append(gaps, models.GapNotice{
						Day:            day,
						Shift:          shift,
						Position:       position,
						RequiresWeapon: requiresWeapon(a.VarName, template[shift][position]),
					})
					continue
				}
				grid[k] = append(grid[k], a.WorkerID)
			}
		}
	}
	return grid, gaps, nil
}

// requiresWeapon reads the weapon marker the solver puts in the last segment of a
// variable name ("Morning_Lobby_Sunday_weapon0"). Names without a marker fall back to
// the template's rule for the position.
func requiresWeapon(varName string, req models.PositionRequirements) bool {
	segments := strings.Split(varName, "_")
	last := segments[len(segments)-1]
	switch {
	case strings.HasPrefix(last, "noweapon"):
		return false
	case strings.HasPrefix(last, "weapon"):
		return true
	default:
		return req.Weapon
	}
}

func validateGaps(gaps []models.GapNotice) error {
	for i, g := range gaps {
		switch {
		case !g.Day.Valid():
			return fmt.Errorf("gap %d: unknown day %q", i, g.Day)
		case !g.Shift.Valid():
			return fmt.Errorf("gap %d: unknown shift %q", i, g.Shift)
		case strings.TrimSpace(g.Position) == "":
			return fmt.Errorf("gap %d: empty position", i)
		}
	}
	return nil
}

func sortedDays(m WeekSchedule) []models.Day {
	days := make([]models.Day, 0, len(m))
	for d := range m {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Index() < days[j].Index() })
	return days
}

func sortedShifts(m map[models.ShiftType][]Assignment) []models.ShiftType {
	shifts := make([]models.ShiftType, 0, len(m))
	for s := range m {
		shifts = append(shifts, s)
	}
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].Index() < shifts[j].Index() })
	return shifts
}
