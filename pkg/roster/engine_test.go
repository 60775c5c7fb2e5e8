package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

func TestEngine_View(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	engine := NewEngine(zap.New(core))

	next := doc("next", date(2025, time.June, 15))
	next.GapNotices = []models.GapNotice{
		{Day: models.Tuesday, Shift: models.Evening, Position: "Guard"},
		{Day: "", Shift: models.Evening, Position: "Guard"},
	}
	archive := models.Archive{SiteID: "hilton", Current: doc("cur", date(2025, time.June, 8)), Next: next}

	v, err := engine.View(archive, profile(models.RoleEmployee), date(2025, time.June, 10), ModeByDay)
	require.NoError(t, err)
	assert.Equal(t, "next", v.Resolution.Key.String())
	assert.Equal(t, "next", v.Resolution.Document.ID)
	assert.Len(t, v.Notices, 1)
	assert.Equal(t, len(next.Grid), v.Grid.DeclaredCells())

	entries := logs.FilterMessage("dropping malformed gap notice").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "next", fields["document"])
	assert.Equal(t, "day", fields["field"])
	assert.EqualValues(t, 1, fields["index"])
}

func TestEngine_ViewEmptyArchive(t *testing.T) {
	engine := NewEngine(nil)
	_, err := engine.View(models.Archive{SiteID: "hilton"}, profile(models.RoleManagement), date(2025, time.June, 10), ModeByWeek)
	assert.True(t, IsNotFound(err))
}
