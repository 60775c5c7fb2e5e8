package roster

import (
	"time"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func doc(id string, anchor time.Time) *models.ScheduleDocument {
	return &models.ScheduleDocument{
		ID:          id,
		SiteID:      "hilton",
		WeekAnchor:  anchor,
		GeneratedAt: anchor.Add(-48 * time.Hour),
		Status:      models.StatusFull,
		Grid: models.AssignmentGrid{
			{Day: models.Sunday, Shift: models.Morning, Position: "Lobby Guard"}:          {1, 2},
			{Day: models.Sunday, Shift: models.Evening, Position: "Lobby Guard"}:          {3},
			{Day: models.Sunday, Shift: models.Morning, Position: "Shift Supervisor"}:     {4},
			{Day: models.Monday, Shift: models.Afternoon, Position: "Parking Lot"}:        {},
			{Day: models.Monday, Shift: models.Morning, Position: "Lobby Guard"}:          {-3},
			{Day: models.Tuesday, Shift: models.Evening, Position: "Pool Area Guard"}:     {99},
			{Day: models.Tuesday, Shift: models.Evening, Position: "Back Entrance"}:       {5},
			{Day: models.Saturday, Shift: models.Afternoon, Position: "Shift Supervisor"}: {4},
		},
		Names: models.NameSnapshot{
			1: "Dana",
			2: "Yossi",
			3: "Noa",
			4: "Avi",
			5: "No Worker (Tuesday Evening)",
		},
	}
}

func profile(role models.Role) models.WorkerProfile {
	return models.WorkerProfile{
		ID:                    1,
		DisplayName:           "Dana",
		SiteID:                "hilton",
		Role:                  role,
		RequestedAvailability: models.NewAvailability(),
	}
}
