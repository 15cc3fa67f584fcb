package scheduling

import "kinecare/models"

// Event names a state-machine trigger.
type Event string

const (
	EventClaim      Event = "claim"
	EventConfirm    Event = "confirm"
	EventReject     Event = "reject"
	EventCancel     Event = "cancel"
	EventReschedule Event = "reschedule"
	EventMarkPaid   Event = "mark_paid"
)

// transitionOutcome describes what a legal transition does.
type transitionOutcome struct {
	// to is the resulting status. When sameStatus is set, the status is
	// carried over unchanged (staff reschedules).
	to         models.AppointmentStatus
	sameStatus bool
	// guarded transitions additionally pass the modification-window
	// policy when triggered by a patient-side actor.
	guarded bool
}

type transitionKey struct {
	from  models.AppointmentStatus
	event Event
	role  models.Role
}

// transitionTable is the single source of truth for which actor may move
// an appointment from which status via which event. Absence of a key
// means the transition is illegal. Admin overrides bypass this table
// entirely and are handled separately.
var transitionTable = map[transitionKey]transitionOutcome{}

func init() {
	register := func(from models.AppointmentStatus, event Event, role models.Role, out transitionOutcome) {
		transitionTable[transitionKey{from, event, role}] = out
	}

	nonTerminal := []models.AppointmentStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusAwaitingReconfirmation,
	}
	staff := []models.Role{models.RolePractitioner, models.RoleAdmin}

	// A practitioner claims an unassigned pending appointment; the status
	// stays pending until they confirm.
	register(models.StatusPending, EventClaim, models.RolePractitioner,
		transitionOutcome{to: models.StatusPending})

	for _, role := range staff {
		register(models.StatusPending, EventConfirm, role,
			transitionOutcome{to: models.StatusConfirmed})
		register(models.StatusAwaitingReconfirmation, EventConfirm, role,
			transitionOutcome{to: models.StatusConfirmed})

		for _, from := range nonTerminal {
			register(from, EventReject, role,
				transitionOutcome{to: models.StatusRejected})
			register(from, EventCancel, role,
				transitionOutcome{to: models.StatusCancelled})
			register(from, EventReschedule, role,
				transitionOutcome{sameStatus: true})
		}

		register(models.StatusConfirmed, EventMarkPaid, role,
			transitionOutcome{to: models.StatusDone})
	}

	// Patient-side actors may cancel any non-terminal appointment, and
	// rescheduling a confirmed one sends it back for re-approval. Both
	// are subject to the 48-hour window.
	for _, from := range nonTerminal {
		register(from, EventCancel, models.RolePatient,
			transitionOutcome{to: models.StatusCancelled, guarded: true})
	}
	register(models.StatusConfirmed, EventReschedule, models.RolePatient,
		transitionOutcome{to: models.StatusAwaitingReconfirmation, guarded: true})
}

// resolveTransition looks up the outcome for (from, event, role). Guest
// actors follow the patient rules: an unregistered booker has the same
// rights over their own appointment as a registered one.
func resolveTransition(from models.AppointmentStatus, event Event, role models.Role) (transitionOutcome, error) {
	if role == models.RoleGuest {
		role = models.RolePatient
	}
	out, ok := transitionTable[transitionKey{from, event, role}]
	if !ok {
		return transitionOutcome{}, ErrIllegalTransition
	}
	return out, nil
}
