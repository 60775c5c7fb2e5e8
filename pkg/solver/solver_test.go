package solver

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

const samplePayload = `{
  "hotelName": "hilton",
  "generatedAt": "2025-06-05T18:30:00Z",
  "status": "partial",
  "relevantWeekStartDate": "2025-06-08",
  "schedule": {
    "Sunday": {
      "Morning": [
        {"position": "Lobby", "var_name": "Morning_Lobby_Sunday_weapon0", "worker_id": 12},
        {"position": "Lobby", "var_name": "Morning_Lobby_Sunday_weapon1", "worker_id": -2},
        {"position": "Lobby", "var_name": "Morning_Lobby_Sunday_noweapon0", "worker_id": 14}
      ],
      "Evening": [
        {"position": "Gate", "var_name": "Evening_Gate_Sunday_noweapon0", "worker_id": -7}
      ]
    },
    "Monday": {
      "Morning": [
        {"position": "Shift Supervisor", "var_name": "Morning_Shift Supervisor_Monday", "worker_id": 4}
      ]
    }
  },
  "idToName": {"12": "Dana", "14": "Yossi", "4": "Avi", "-2": "Dummi (Morning_Lobby_Sunday_weapon1)"}
}`

func newTestIntake() *Intake {
	return &Intake{
		now:   func() time.Time { return time.Date(2025, time.June, 6, 9, 0, 0, 0, time.UTC) },
		newID: func() string { return "doc-1" },
	}
}

func decode(t *testing.T, raw string) *Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return &p
}

func TestBuild(t *testing.T) {
	template := models.StaffingTemplate{
		models.Afternoon: {
			"Parking": {Days: map[models.Day]models.Requirement{models.Tuesday: {Active: true, Count: 1}}},
		},
	}

	doc, err := newTestIntake().Build(decode(t, samplePayload), "hilton", template)
	require.NoError(t, err)

	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "hilton", doc.SiteID)
	assert.Equal(t, time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC), doc.WeekAnchor)
	assert.Equal(t, time.Date(2025, time.June, 5, 18, 30, 0, 0, time.UTC), doc.GeneratedAt)
	assert.Equal(t, models.StatusPartial, doc.Status)

	assert.Equal(t, []int{12, 14}, doc.Grid[models.SlotKey{Day: models.Sunday, Shift: models.Morning, Position: "Lobby"}])
	assert.Equal(t, []int{}, doc.Grid[models.SlotKey{Day: models.Sunday, Shift: models.Evening, Position: "Gate"}])
	assert.Equal(t, []int{4}, doc.Grid[models.SlotKey{Day: models.Monday, Shift: models.Morning, Position: "Shift Supervisor"}])
	assert.Equal(t, []int{}, doc.Grid[models.SlotKey{Day: models.Tuesday, Shift: models.Afternoon, Position: "Parking"}])
	assert.Len(t, doc.Grid, 4)

	assert.Equal(t, []models.GapNotice{
		{Day: models.Sunday, Shift: models.Morning, Position: "Lobby", RequiresWeapon: true},
		{Day: models.Sunday, Shift: models.Evening, Position: "Gate", RequiresWeapon: false},
	}, doc.GapNotices)

	assert.Equal(t, "Dana", doc.Names[12])
	assert.Equal(t, "Avi", doc.Names[4])
}

func TestBuild_ExplicitGapsWin(t *testing.T) {
	p := decode(t, samplePayload)
	p.Gaps = []models.GapNotice{{Day: models.Friday, Shift: models.Evening, Position: "Gate", RequiresWeapon: true}}

	doc, err := newTestIntake().Build(p, "hilton", nil)
	require.NoError(t, err)
	assert.Equal(t, p.Gaps, doc.GapNotices)
}

func TestBuild_FullSchedule(t *testing.T) {
	p := &Payload{
		RelevantWeekStartDate: "2025-06-15",
		Schedule: WeekSchedule{
			models.Friday: {models.Evening: {{Position: "Gate", VarName: "Evening_Gate_Friday_weapon0", WorkerID: 3}}},
		},
		IDToName: map[string]string{"3": "Noa"},
	}

	doc, err := newTestIntake().Build(p, "hilton", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFull, doc.Status)
	assert.Empty(t, doc.GapNotices)
	assert.Equal(t, time.Date(2025, time.June, 6, 9, 0, 0, 0, time.UTC), doc.GeneratedAt)
}

func TestBuild_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Payload)
		field  string
	}{
		{"other site", func(p *Payload) { p.HotelName = "marriott" }, "hotelName"},
		{"bad anchor", func(p *Payload) { p.RelevantWeekStartDate = "June 8th" }, "relevantWeekStartDate"},
		{"anchor not sunday", func(p *Payload) { p.RelevantWeekStartDate = "2025-06-09" }, "relevantWeekStartDate"},
		{"bad timestamp", func(p *Payload) { p.GeneratedAt = "yesterday" }, "generatedAt"},
		{"bad worker id", func(p *Payload) { p.IDToName["abc"] = "Nobody" }, "idToName"},
		{"unknown day", func(p *Payload) { p.Schedule["Funday"] = p.Schedule[models.Sunday] }, "schedule"},
		{"unknown shift", func(p *Payload) { p.Schedule[models.Monday]["Night"] = nil }, "schedule"},
		{"empty position", func(p *Payload) {
			p.Schedule[models.Monday][models.Evening] = []Assignment{{Position: " ", WorkerID: 1}}
		}, "schedule"},
		{"bad gap", func(p *Payload) { p.Gaps = []models.GapNotice{{Day: models.Monday, Position: "Gate"}} }, "gaps"},
		{"full with gaps", func(p *Payload) { p.Status = models.StatusFull }, "status"},
		{"unknown status", func(p *Payload) { p.Status = "done" }, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := decode(t, samplePayload)
			tt.mutate(p)

			_, err := newTestIntake().Build(p, "hilton", nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument))

			var de *DocumentError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.field, de.Field)
			assert.Equal(t, "hilton", de.SiteID)
		})
	}
}

func TestRequiresWeapon(t *testing.T) {
	armed := models.PositionRequirements{Weapon: true}
	assert.True(t, requiresWeapon("Morning_Lobby_Sunday_weapon2", models.PositionRequirements{}))
	assert.False(t, requiresWeapon("Morning_Lobby_Sunday_noweapon0", armed))
	assert.True(t, requiresWeapon("Morning_Lobby_Sunday", armed))
	assert.False(t, requiresWeapon("", models.PositionRequirements{}))
}
