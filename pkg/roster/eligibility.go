package roster

import (
	"fmt"
	"sort"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

// AlreadyRequested reports whether the worker already offered the notice's shift.
func AlreadyRequested(n models.GapNotice, p models.WorkerProfile) bool {
	return p.RequestedAvailability.Has(n.Day, n.Shift)
}

// FilterGapNotices returns the notices the worker should see, ordered by day and shift.
//
// Management sees every notice. Shift managers see every notice they have not already
// offered to cover. Employees see one category only: weapon notices when certified,
// plain notices when not, and nothing when their category is empty or their position
// is Shift Supervisor. Notices without a valid day or shift are dropped and passed to
// report, which may be nil.
func FilterGapNotices(notices []models.GapNotice, p models.WorkerProfile, report func(*MalformedNoticeError)) []models.GapNotice {
	valid := wellFormed(notices, report)
	sortNotices(valid)

	switch p.Role {
	case models.RoleManagement:
		return valid
	case models.RoleShiftManager:
		return notRequested(valid, p)
	case models.RoleEmployee:
		return forEmployee(valid, p)
	default:
		return []models.GapNotice{}
	}
}

func forEmployee(notices []models.GapNotice, p models.WorkerProfile) []models.GapNotice {
	var weapon, plain []models.GapNotice
	for _, n := range notices {
		if n.RequiresWeapon {
			weapon = append(weapon, n)
		} else {
			plain = append(plain, n)
		}
	}
	supervisor := p.PositionName() == models.PositionShiftSupervisor
	switch {
	case len(weapon) > 0 && p.WeaponCertified && !supervisor:
		return notRequested(weapon, p)
	case len(plain) > 0 && !p.WeaponCertified && !supervisor:
		return notRequested(plain, p)
	default:
		return []models.GapNotice{}
	}
}

func notRequested(notices []models.GapNotice, p models.WorkerProfile) []models.GapNotice {
	out := make([]models.GapNotice, 0, len(notices))
	for _, n := range notices {
		if !AlreadyRequested(n, p) {
			out = append(out, n)
		}
	}
	return out
}

func wellFormed(notices []models.GapNotice, report func(*MalformedNoticeError)) []models.GapNotice {
	out := make([]models.GapNotice, 0, len(notices))
	for i, n := range notices {
		field := ""
		switch {
		case !n.Day.Valid():
			field = "day"
		case !n.Shift.Valid():
			field = "shift"
		}
		if field != "" {
			if report != nil {
				report(&MalformedNoticeError{Index: i, Field: field, Notice: fmt.Sprintf("%+v", n)})
			}
			continue
		}
		out = append(out, n)
	}
	return out
}

func sortNotices(notices []models.GapNotice) {
	sort.SliceStable(notices, func(i, j int) bool {
		a, b := notices[i], notices[j]
		if a.Day.Index() != b.Day.Index() {
			return a.Day.Index() < b.Day.Index()
		}
		return a.Shift.Index() < b.Shift.Index()
	})
}
