package scheduling

import (
	"math"
	"time"

	"kinecare/models"
)

// ModificationWindow is the lead time below which patient-initiated
// changes are blocked.
const ModificationWindow = 48 * time.Hour

// AuthorizeModification applies the 48-hour rule to patient-initiated
// edits and cancellations. Practitioners and admins bypass the guard
// entirely. Ownership must already have been established by the caller;
// this guard only judges timing.
func AuthorizeModification(appt *models.Appointment, role models.Role, now time.Time) error {
	if role.Staff() {
		return nil
	}

	hoursUntil := appt.Date.Sub(now).Hours()
	if hoursUntil < ModificationWindow.Hours() {
		return NewWindowClosed(math.Round(hoursUntil*10) / 10)
	}
	return nil
}
