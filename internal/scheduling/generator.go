package scheduling

import (
	"sort"
	"time"

	"sasamom-server/internal/models"
	"sasamom-server/internal/utils"
)

// DuplicatePolicy decides which existing doses block generating a new one
// for the same (child, vaccination).
type DuplicatePolicy int

const (
	// DuplicateActiveOnly: only an incomplete dose blocks. A vaccination that
	// was completed may be scheduled again while its due date is not past.
	DuplicateActiveOnly DuplicatePolicy = iota
	// DuplicateAny: any dose, completed or not, blocks.
	DuplicateAny
)

// ParsePolicy maps the SCHEDULE_DUPLICATE_POLICY value to a policy.
func ParsePolicy(s string) DuplicatePolicy {
	if s == "any" {
		return DuplicateAny
	}
	return DuplicateActiveOnly
}

func (p DuplicatePolicy) String() string {
	if p == DuplicateAny {
		return "any"
	}
	return "active"
}

// Generate returns the doses that should be created for child. It is a pure
// function of its inputs:
//   - no birth date, no doses;
//   - a dose whose due date (birth + recommended age) is before today is
//     never created;
//   - an existing dose blocking under policy means no new dose.
//
// The result is ordered by due date, dose order and name, so the order of
// catalog does not matter.
func Generate(child *models.Child, catalog []*models.Vaccination, existing []*models.ScheduledDose, today time.Time, policy DuplicatePolicy) []*models.ScheduledDose {
	if child == nil {
		return nil
	}
	dob, ok := child.BirthDate()
	if !ok {
		return nil
	}
	today = utils.DateOf(today)

	blocked := make(map[string]bool, len(existing))
	for _, d := range existing {
		if d == nil || d.ChildID != child.ID {
			continue
		}
		if policy == DuplicateAny || !d.Completed {
			blocked[d.VaccinationID] = true
		}
	}

	type planned struct {
		dose *models.ScheduledDose
		vac  *models.Vaccination
	}
	var out []planned
	for _, v := range catalog {
		if v == nil || blocked[v.ID] {
			continue
		}
		due := utils.AddDays(dob, v.RecommendedAgeDays)
		if due.Before(today) {
			continue
		}
		// Also guards against the same catalog entry appearing twice.
		blocked[v.ID] = true
		out = append(out, planned{
			dose: &models.ScheduledDose{
				ChildID:       child.ID,
				VaccinationID: v.ID,
				ScheduledDate: models.NewDate(due),
			},
			vac: v,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].dose.DueDate(), out[j].dose.DueDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if out[i].vac.DoseOrder != out[j].vac.DoseOrder {
			return out[i].vac.DoseOrder < out[j].vac.DoseOrder
		}
		if out[i].vac.Name != out[j].vac.Name {
			return out[i].vac.Name < out[j].vac.Name
		}
		return out[i].vac.ID < out[j].vac.ID
	})

	doses := make([]*models.ScheduledDose, 0, len(out))
	for _, p := range out {
		doses = append(doses, p.dose)
	}
	return doses
}
