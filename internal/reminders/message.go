package reminders

import (
	"fmt"
	"strings"

	"sasamom-server/internal/models"
)

const defaultFacility = "your nearest health facility"

// Message renders the SMS body for one stage of a dose. The dose must carry
// its child, the child's mother and the vaccination.
func Message(stage models.ReminderStage, dose *models.ScheduledDose) string {
	mother := strings.TrimSpace(dose.Child.Mother.Name)
	child := dose.Child.DisplayName()
	vaccine := dose.Vaccination.Name

	if stage == models.StageDayBefore {
		return fmt.Sprintf("Hello %s, reminder: %s is due for %s vaccination tomorrow.", mother, child, vaccine)
	}
	hospital := strings.TrimSpace(dose.Child.Mother.Hospital)
	if hospital == "" {
		hospital = defaultFacility
	}
	return fmt.Sprintf("Hello %s, today is the vaccination day for %s (%s). Please visit %s.", mother, child, vaccine, hospital)
}
