package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Day is a weekday name. The zero value means "missing".
type Day string

const (
	Sunday    Day = "Sunday"
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
)

// Days lists the week Sunday first.
var Days = []Day{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Index returns the position of d in Days, or -1 when d is not a weekday.
func (d Day) Index() int {
	for i, v := range Days {
		if v == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d names a weekday.
func (d Day) Valid() bool { return d.Index() >= 0 }

// ShiftType is one of the three daily shifts. The zero value means "missing".
type ShiftType string

const (
	Morning   ShiftType = "Morning"
	Afternoon ShiftType = "Afternoon"
	Evening   ShiftType = "Evening"
)

// Shifts lists the shifts in daily order.
var Shifts = []ShiftType{Morning, Afternoon, Evening}

// Index returns the position of s in Shifts, or -1 when s is not a shift.
func (s ShiftType) Index() int {
	for i, v := range Shifts {
		if v == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s names a shift.
func (s ShiftType) Valid() bool { return s.Index() >= 0 }

// Role is a worker's role at a site.
type Role string

const (
	RoleManagement   Role = "management"
	RoleShiftManager Role = "shift_manager"
	RoleEmployee     Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleManagement || r == RoleShiftManager || r == RoleEmployee
}

// PositionShiftSupervisor is governed by its own staffing rule and is never bucketed
// by weapon certification.
const PositionShiftSupervisor = "Shift Supervisor"

// ShiftSlot is one (day, shift) pair of a week.
type ShiftSlot struct {
	Day   Day       `json:"day"`
	Shift ShiftType `json:"shift"`
}

// Availability is the set of shift slots a worker offered to work.
type Availability map[ShiftSlot]bool

// NewAvailability builds an availability set from slots.
func NewAvailability(slots ...ShiftSlot) Availability {
	a := make(Availability, len(slots))
	for _, s := range slots {
		a[s] = true
	}
	return a
}

// Has reports whether the worker offered the given slot.
func (a Availability) Has(day Day, shift ShiftType) bool {
	return a[ShiftSlot{Day: day, Shift: shift}]
}

// Slots returns the set ordered by day then shift.
func (a Availability) Slots() []ShiftSlot {
	out := make([]ShiftSlot, 0, len(a))
	for s, ok := range a {
		if ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day.Index() != out[j].Day.Index() {
			return out[i].Day.Index() < out[j].Day.Index()
		}
		return out[i].Shift.Index() < out[j].Shift.Index()
	})
	return out
}

// DayShifts is the wire form of one day of availability.
type DayShifts struct {
	Day    Day         `json:"day"`
	Shifts []ShiftType `json:"shifts"`
}

// Days groups the set per day in week order.
func (a Availability) Days() []DayShifts {
	var out []DayShifts
	for _, s := range a.Slots() {
		if n := len(out); n > 0 && out[n-1].Day == s.Day {
			out[n-1].Shifts = append(out[n-1].Shifts, s.Shift)
			continue
		}
		out = append(out, DayShifts{Day: s.Day, Shifts: []ShiftType{s.Shift}})
	}
	return out
}

// MarshalJSON writes the availability as a list of days with their shifts.
func (a Availability) MarshalJSON() ([]byte, error) {
	days := a.Days()
	if days == nil {
		days = []DayShifts{}
	}
	return json.Marshal(days)
}

// UnmarshalJSON reads the list-of-days form. A day listed without shifts is left empty;
// callers that accept submissions expand it with ExpandAvailability.
func (a *Availability) UnmarshalJSON(data []byte) error {
	var days []DayShifts
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	set := make(Availability)
	for _, d := range days {
		if !d.Day.Valid() {
			return fmt.Errorf("availability: unknown day %q", d.Day)
		}
		for _, s := range d.Shifts {
			if !s.Valid() {
				return fmt.Errorf("availability: unknown shift %q on %s", s, d.Day)
			}
			set[ShiftSlot{Day: d.Day, Shift: s}] = true
		}
	}
	*a = set
	return nil
}

// ExpandAvailability turns a submission into a set. A day submitted with no shifts
// means every shift of that day.
func ExpandAvailability(days []DayShifts) (Availability, error) {
	set := make(Availability)
	for _, d := range days {
		if !d.Day.Valid() {
			return nil, fmt.Errorf("availability: unknown day %q", d.Day)
		}
		shifts := d.Shifts
		if len(shifts) == 0 {
			shifts = Shifts
		}
		for _, s := range shifts {
			if !s.Valid() {
				return nil, fmt.Errorf("availability: unknown shift %q on %s", s, d.Day)
			}
			set[ShiftSlot{Day: d.Day, Shift: s}] = true
		}
	}
	return set, nil
}

// WorkerProfile is the identity of the worker a view is built for.
type WorkerProfile struct {
	ID                    int          `json:"id"`
	DisplayName           string       `json:"name"`
	SiteID                string       `json:"site"`
	Role                  Role         `json:"role"`
	WeaponCertified       bool         `json:"weaponCertified"`
	Position              *string      `json:"position,omitempty"`
	RequestedAvailability Availability `json:"requestedAvailability"`
}

// PositionName returns the worker's position or "" when none is set.
func (p WorkerProfile) PositionName() string {
	if p.Position == nil {
		return ""
	}
	return *p.Position
}

// GapNotice is one staffing slot the solver could not fill.
type GapNotice struct {
	Day            Day       `json:"day"`
	Shift          ShiftType `json:"shift"`
	Position       string    `json:"position"`
	RequiresWeapon bool      `json:"requiresWeapon"`
}

// ScheduleStatus tells whether every slot of a document was filled.
type ScheduleStatus string

const (
	StatusFull    ScheduleStatus = "full"
	StatusPartial ScheduleStatus = "partial"
)

// SlotKey addresses one cell of the assignment grid.
type SlotKey struct {
	Day      Day
	Shift    ShiftType
	Position string
}

// Less orders keys by day, shift, then position.
func (k SlotKey) Less(o SlotKey) bool {
	if k.Day.Index() != o.Day.Index() {
		return k.Day.Index() < o.Day.Index()
	}
	if k.Shift.Index() != o.Shift.Index() {
		return k.Shift.Index() < o.Shift.Index()
	}
	return k.Position < o.Position
}

// AssignmentGrid maps every declared slot to the workers assigned there, in display
// order. A declared slot with nobody assigned maps to an empty list.
type AssignmentGrid map[SlotKey][]int

// Keys returns the declared slots in grid order.
func (g AssignmentGrid) Keys() []SlotKey {
	keys := make([]SlotKey, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

type gridSlot struct {
	Day      Day       `json:"day"`
	Shift    ShiftType `json:"shift"`
	Position string    `json:"position"`
	Workers  []int     `json:"workers"`
}

// MarshalJSON writes the grid as an ordered list of slots.
func (g AssignmentGrid) MarshalJSON() ([]byte, error) {
	slots := make([]gridSlot, 0, len(g))
	for _, k := range g.Keys() {
		workers := g[k]
		if workers == nil {
			workers = []int{}
		}
		slots = append(slots, gridSlot{Day: k.Day, Shift: k.Shift, Position: k.Position, Workers: workers})
	}
	return json.Marshal(slots)
}

// UnmarshalJSON reads the list-of-slots form.
func (g *AssignmentGrid) UnmarshalJSON(data []byte) error {
	var slots []gridSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return err
	}
	grid := make(AssignmentGrid, len(slots))
	for _, s := range slots {
		workers := s.Workers
		if workers == nil {
			workers = []int{}
		}
		grid[SlotKey{Day: s.Day, Shift: s.Shift, Position: s.Position}] = workers
	}
	*g = grid
	return nil
}

// NameSnapshot maps worker ids to display names as they were at generation time.
type NameSnapshot map[int]string

// ScheduleDocument is one immutable weekly schedule produced by the solver.
type ScheduleDocument struct {
	ID          string         `json:"id"`
	SiteID      string         `json:"site"`
	WeekAnchor  time.Time      `json:"weekAnchor"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Status      ScheduleStatus `json:"status"`
	Grid        AssignmentGrid `json:"assignments"`
	Names       NameSnapshot   `json:"names"`
	GapNotices  []GapNotice    `json:"gapNotices"`
}

// MaxPrevious bounds the number of historical documents kept in an archive.
const MaxPrevious = 5

// Archive is a site's schedule documents partitioned for display.
type Archive struct {
	SiteID   string             `json:"site"`
	Current  *ScheduleDocument  `json:"current,omitempty"`
	Next     *ScheduleDocument  `json:"next,omitempty"`
	Previous []ScheduleDocument `json:"previous"`
}

// Requirement is the staffing need of one position on one day.
type Requirement struct {
	Active bool `json:"active"`
	Count  int  `json:"numOfEmployees"`
}

// PositionRequirements holds a position's weapon rule and its per-day needs.
type PositionRequirements struct {
	Weapon bool                `json:"weapon"`
	Days   map[Day]Requirement `json:"days"`
}

// StaffingTemplate is a site's weekly requirement document: shift -> position -> needs.
type StaffingTemplate map[ShiftType]map[string]PositionRequirements

// Triples returns every (day, shift, position) the template declares, in grid order.
func (t StaffingTemplate) Triples() []SlotKey {
	var keys []SlotKey
	for shift, positions := range t {
		for position, req := range positions {
			for d := range req.Days {
				keys = append(keys, SlotKey{Day: d, Shift: shift, Position: position})
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Validate checks that the template only names known days and shifts.
func (t StaffingTemplate) Validate() error {
	for shift, positions := range t {
		if !shift.Valid() {
			return fmt.Errorf("template: unknown shift %q", shift)
		}
		for position, req := range positions {
			if position == "" {
				return fmt.Errorf("template: empty position under %s", shift)
			}
			for d, r := range req.Days {
				if !d.Valid() {
					return fmt.Errorf("template: unknown day %q for %s/%s", d, shift, position)
				}
				if r.Count < 0 {
					return fmt.Errorf("template: negative count for %s/%s/%s", d, shift, position)
				}
			}
		}
	}
	return nil
}
