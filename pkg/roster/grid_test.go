package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

func TestResolve(t *testing.T) {
	d := doc("cur", date(2025, time.June, 8))
	p := profile(models.RoleEmployee)

	tests := []struct {
		name string
		id   int
		text string
		tag  Tag
	}{
		{"self", 1, "Dana", TagSelf},
		{"colleague", 2, "Yossi", TagOK},
		{"dummy worker", -3, "Empty", TagMissing},
		{"unknown id", 99, "ID: 99", TagMissing},
		{"sentinel name", 5, "Empty", TagMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Resolve(tt.id, d, p)
			assert.Equal(t, tt.id, e.WorkerID)
			assert.Equal(t, tt.text, e.Text)
			assert.Equal(t, tt.tag, e.Tag)
		})
	}
}

func TestAssembleGrid_ByDay(t *testing.T) {
	d := doc("cur", date(2025, time.June, 8))
	g := AssembleGrid(d, profile(models.RoleEmployee), ModeByDay)

	assert.Equal(t, ModeByDay, g.Mode)
	assert.Equal(t, "08/06/2025 - 14/06/2025", g.WeekRange)
	assert.False(t, g.Partial)
	assert.Equal(t, len(d.Grid), g.DeclaredCells())

	require.Len(t, g.Sections, 4)
	titles := []string{g.Sections[0].Title, g.Sections[1].Title, g.Sections[2].Title, g.Sections[3].Title}
	assert.Equal(t, []string{"Sunday", "Monday", "Tuesday", "Saturday"}, titles)

	sunday := g.Sections[0]
	assert.Equal(t, []string{"Morning", "Afternoon", "Evening"}, sunday.Columns)
	require.Len(t, sunday.Rows, 2)
	assert.Equal(t, "Lobby Guard", sunday.Rows[0].Position)
	assert.Equal(t, "Shift Supervisor", sunday.Rows[1].Position)

	lobby := sunday.Rows[0].Cells
	require.Len(t, lobby, 3)
	assert.True(t, lobby[0].Declared)
	assert.Equal(t, []Entry{
		{WorkerID: 1, Text: "Dana", Tag: TagSelf},
		{WorkerID: 2, Text: "Yossi", Tag: TagOK},
	}, lobby[0].Entries)
	assert.False(t, lobby[1].Declared)
	assert.Empty(t, lobby[1].Entries)
	assert.True(t, lobby[2].Declared)

	monday := g.Sections[1]
	require.Len(t, monday.Rows, 2)
	parking := monday.Rows[1]
	assert.Equal(t, "Parking Lot", parking.Position)
	assert.Equal(t, []Entry{{WorkerID: -1, Text: "Empty", Tag: TagMissing}}, parking.Cells[1].Entries)
}

func TestAssembleGrid_ByWeek(t *testing.T) {
	d := doc("cur", date(2025, time.June, 8))
	d.Status = models.StatusPartial
	g := AssembleGrid(d, profile(models.RoleManagement), ModeByWeek)

	assert.True(t, g.Partial)
	assert.Equal(t, len(d.Grid), g.DeclaredCells())
	require.Len(t, g.Sections, 3)

	morning := g.Sections[0]
	assert.Equal(t, "Morning", morning.Title)
	assert.Equal(t, []string{"Sunday", "Monday", "Tuesday", "Saturday"}, morning.Columns)
	require.Len(t, morning.Rows, 2)
	for _, r := range morning.Rows {
		require.Len(t, r.Cells, 4)
		for i, c := range r.Cells {
			assert.Equal(t, morning.Columns[i], c.Column)
		}
	}

	evening := g.Sections[2]
	assert.Equal(t, "Evening", evening.Title)
	positions := make([]string, 0, len(evening.Rows))
	for _, r := range evening.Rows {
		positions = append(positions, r.Position)
	}
	assert.Equal(t, []string{"Back Entrance", "Lobby Guard", "Pool Area Guard"}, positions)
}

func TestAssembleGrid_CellCountMatchesTemplate(t *testing.T) {
	template := models.StaffingTemplate{
		models.Morning: {
			"Lobby Guard": {Weapon: true, Days: map[models.Day]models.Requirement{
				models.Sunday: {Active: true, Count: 2},
				models.Friday: {Active: true, Count: 1},
			}},
		},
		models.Evening: {
			"Parking Lot": {Days: map[models.Day]models.Requirement{
				models.Monday: {Active: true, Count: 1},
			}},
		},
	}
	d := doc("cur", date(2025, time.June, 8))
	d.Grid = models.AssignmentGrid{}
	for _, k := range template.Triples() {
		d.Grid[k] = []int{}
	}

	for _, mode := range []Mode{ModeByDay, ModeByWeek} {
		g := AssembleGrid(d, profile(models.RoleEmployee), mode)
		assert.Equal(t, len(template.Triples()), g.DeclaredCells(), "mode %s", mode)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeByDay, false},
		{"byDay", ModeByDay, false},
		{"byWeek", ModeByWeek, false},
		{"wide", ModeByWeek, false},
		{"monthly", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
