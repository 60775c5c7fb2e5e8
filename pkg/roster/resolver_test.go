package roster

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

func TestResolveDisplayWeek_OnlyCurrent(t *testing.T) {
	current := doc("cur", date(2025, time.June, 8))
	archive := models.Archive{SiteID: "hilton", Current: current}

	res, err := ResolveDisplayWeek(archive, date(2025, time.June, 10))
	require.NoError(t, err)
	assert.Equal(t, "current", res.Key.String())
	assert.Same(t, current, res.Document)
	assert.True(t, res.ContainsReference)
	assert.Equal(t, "08/06/2025 - 14/06/2025", res.WeekRange)
}

func TestResolveDisplayWeek_NextWinsRegardlessOfDate(t *testing.T) {
	current := doc("cur", date(2025, time.June, 8))
	next := doc("next", date(2025, time.June, 15))
	archive := models.Archive{SiteID: "hilton", Current: current, Next: next}

	for _, ref := range []time.Time{
		date(2025, time.June, 9),
		date(2025, time.June, 15),
		date(2024, time.January, 1),
		date(2030, time.December, 31),
	} {
		res, err := ResolveDisplayWeek(archive, ref)
		require.NoError(t, err)
		assert.Equal(t, BucketNext, res.Key.Bucket)
		assert.Same(t, next, res.Document)
	}

	res, _ := ResolveDisplayWeek(archive, date(2025, time.June, 9))
	assert.False(t, res.ContainsReference)
}

func TestResolveDisplayWeek_FallsBackToNewestPrevious(t *testing.T) {
	older := *doc("old", date(2025, time.May, 25))
	newer := *doc("new", date(2025, time.June, 1))
	archive := models.Archive{SiteID: "hilton", Previous: []models.ScheduleDocument{newer, older}}

	res, err := ResolveDisplayWeek(archive, date(2025, time.June, 10))
	require.NoError(t, err)
	assert.Equal(t, "previous:0", res.Key.String())
	assert.Equal(t, "new", res.Document.ID)
}

func TestResolveDisplayWeek_EmptyArchive(t *testing.T) {
	_, err := ResolveDisplayWeek(models.Archive{SiteID: "hilton", Previous: []models.ScheduleDocument{}}, date(2025, time.June, 10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoScheduleAvailable))
	assert.True(t, IsNotFound(err))

	var nse *NoScheduleError
	require.True(t, errors.As(err, &nse))
	assert.Equal(t, "hilton", nse.SiteID)
}

func TestResolveDisplayWeek_Deterministic(t *testing.T) {
	archive := models.Archive{
		SiteID:   "hilton",
		Current:  doc("cur", date(2025, time.June, 8)),
		Previous: []models.ScheduleDocument{*doc("p0", date(2025, time.June, 1))},
	}
	ref := date(2025, time.June, 11)
	first, err := ResolveDisplayWeek(archive, ref)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := ResolveDisplayWeek(archive, ref)
		require.NoError(t, err)
		assert.Equal(t, first.Key, again.Key)
		assert.Same(t, first.Document, again.Document)
	}
}

func TestWeekKey_MarshalText(t *testing.T) {
	b, err := WeekKey{Bucket: BucketPrevious, Index: 2}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "previous:2", string(b))
}

func TestResolveWeek(t *testing.T) {
	archive := models.Archive{
		SiteID:  "hilton",
		Current: doc("cur", date(2025, time.June, 8)),
		Next:    doc("next", date(2025, time.June, 15)),
		Previous: []models.ScheduleDocument{
			*doc("p0", date(2025, time.June, 1)),
			*doc("p1", date(2025, time.May, 25)),
		},
	}
	ref := date(2025, time.June, 10)

	tests := []struct {
		anchor time.Time
		key    string
		id     string
	}{
		{date(2025, time.June, 15), "next", "next"},
		{date(2025, time.June, 8), "current", "cur"},
		{date(2025, time.May, 25), "previous:1", "p1"},
	}
	for _, tt := range tests {
		res, err := ResolveWeek(archive, tt.anchor, ref)
		require.NoError(t, err)
		assert.Equal(t, tt.key, res.Key.String())
		assert.Equal(t, tt.id, res.Document.ID)
	}

	res, err := ResolveWeek(archive, date(2025, time.June, 8), ref)
	require.NoError(t, err)
	assert.True(t, res.ContainsReference)

	_, err = ResolveWeek(archive, date(2025, time.June, 22), ref)
	assert.True(t, errors.Is(err, ErrWeekNotFound))
	assert.True(t, IsNotFound(err))
}
