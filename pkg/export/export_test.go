package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/roster"
)

func TestGrid(t *testing.T) {
	anchor := time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC)
	doc := &models.ScheduleDocument{
		ID:         "cur",
		SiteID:     "hilton",
		WeekAnchor: anchor,
		Status:     models.StatusPartial,
		Grid: models.AssignmentGrid{
			{Day: models.Sunday, Shift: models.Morning, Position: "Lobby"}: {1, 2},
			{Day: models.Sunday, Shift: models.Evening, Position: "Lobby"}: {},
		},
		Names: models.NameSnapshot{1: "Dana", 2: "Yossi"},
	}
	p := models.WorkerProfile{ID: 1, DisplayName: "Dana", Role: models.RoleEmployee}
	g := roster.AssembleGrid(doc, p, roster.ModeByDay)

	buf, filename, err := Grid(g, "hilton", anchor)
	require.NoError(t, err)
	assert.Equal(t, "roster_hilton_2025-06-08_byDay.xlsx", filename)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	read := func(ref string) string {
		v, err := f.GetCellValue(SheetName, ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "hilton: 08/06/2025 - 14/06/2025 (partial)", read("A1"))
	assert.Equal(t, "Sunday", read("A3"))
	assert.Equal(t, "Position", read("A4"))
	assert.Equal(t, "Morning", read("B4"))
	assert.Equal(t, "Evening", read("D4"))
	assert.Equal(t, "Lobby", read("A5"))
	assert.Equal(t, "Dana\nYossi", read("B5"))
	assert.Equal(t, "-", read("C5"))
	assert.Equal(t, "Empty", read("D5"))
}

func TestGrid_Empty(t *testing.T) {
	g := roster.Grid{Mode: roster.ModeByWeek, WeekRange: "15/06/2025 - 21/06/2025"}
	buf, _, err := Grid(g, "hilton", time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "hilton: 15/06/2025 - 21/06/2025", v)
}
