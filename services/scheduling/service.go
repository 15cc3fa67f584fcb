package scheduling

import (
	"context"
	"errors"
	"time"

	appointmentRepo "kinecare/database/repository/appointment"
	userRepo "kinecare/database/repository/user"
	"kinecare/models"
	"kinecare/utils"

	"go.uber.org/zap"
)

// DefaultSchedulingService is the production scheduling core.
type DefaultSchedulingService struct {
	Repo      appointmentRepo.Repository
	Users     userRepo.UserRepository
	Notifier  Notifier          // optional
	Reminders ReminderScheduler // optional
	Clock     Clock             // defaults to SystemClock
}

func (s *DefaultSchedulingService) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return SystemClock.Now()
}

func (s *DefaultSchedulingService) allocator() SlotAllocator {
	return SlotAllocator{Repo: s.Repo}
}

// mapRepoErr translates storage sentinels into scheduling kinds. Anything
// else is an unexpected storage failure and passes through unchanged.
func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, appointmentRepo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, appointmentRepo.ErrSlotTaken):
		return ErrSlotConflict
	default:
		return err
	}
}

// authorizeAccess verifies the actor's ownership or assignment rights over
// the appointment. This precondition precedes both the policy guard and
// the state machine.
func authorizeAccess(appt *models.Appointment, actor Actor) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RolePractitioner:
		if appt.PractitionerID != nil && *appt.PractitionerID == actor.ID {
			return nil
		}
		return ErrForbidden
	case models.RolePatient:
		if appt.PatientID != nil && *appt.PatientID == actor.ID {
			return nil
		}
		return ErrForbidden
	default:
		// Guests carry no verifiable identity; their appointments are
		// managed by staff.
		return ErrForbidden
	}
}

// getOwned fetches the appointment and checks access in one step.
func (s *DefaultSchedulingService) getOwned(ctx context.Context, id string, actor Actor) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := authorizeAccess(appt, actor); err != nil {
		return nil, err
	}
	return appt, nil
}

// GetByID returns a single appointment, subject to ownership rights.
func (s *DefaultSchedulingService) GetByID(ctx context.Context, id string, actor Actor) (*models.Appointment, error) {
	return s.getOwned(ctx, id, actor)
}

// List returns appointments for dashboards. Practitioners see only their
// own calendar regardless of the requested filter.
func (s *DefaultSchedulingService) List(ctx context.Context, f ListFilter, actor Actor) ([]models.Appointment, int64, error) {
	filter := appointmentRepo.Filter{
		Status:         f.Status,
		PractitionerID: f.PractitionerID,
		From:           f.From,
		To:             f.To,
		Page:           f.Page,
		Limit:          f.Limit,
	}
	if actor.Role == models.RolePractitioner {
		filter.PractitionerID = actor.ID
	}
	return s.Repo.Find(ctx, filter)
}

// ListForUser returns a user's appointments. Patients and practitioners
// may only see their own; admins may see anyone's.
func (s *DefaultSchedulingService) ListForUser(ctx context.Context, userID string, f ListFilter, actor Actor) ([]models.Appointment, error) {
	if actor.Role != models.RoleAdmin && actor.ID != userID {
		return nil, ErrForbidden
	}

	filter := appointmentRepo.Filter{
		Status: f.Status,
		From:   f.From,
		To:     f.To,
	}
	// The filter side depends on who the history belongs to, not on who
	// asks. An admin browsing another account resolves the target's role.
	targetRole := actor.Role
	if actor.ID != userID {
		if u, err := s.Users.GetByID(ctx, userID); err == nil {
			targetRole = u.Role
		}
	}
	if targetRole == models.RolePractitioner {
		filter.PractitionerID = userID
	} else {
		filter.PatientID = userID
	}

	appts, _, err := s.Repo.Find(ctx, filter)
	return appts, err
}

// AvailableForClaim lists unassigned pending appointments in the future,
// for practitioners to pick from.
func (s *DefaultSchedulingService) AvailableForClaim(ctx context.Context, actor Actor) ([]models.Appointment, error) {
	if !actor.Role.Staff() {
		return nil, ErrForbidden
	}

	pending := models.StatusPending
	now := s.now()
	appts, _, err := s.Repo.Find(ctx, appointmentRepo.Filter{
		Status:     &pending,
		Unassigned: true,
		From:       &now,
	})
	return appts, err
}

// BookedSlots returns occupied timestamps in the range for the public
// booking calendar.
func (s *DefaultSchedulingService) BookedSlots(ctx context.Context, from, to time.Time) ([]models.BookedSlot, error) {
	return s.Repo.BookedSlots(ctx, from, to)
}

// notify dispatches a lifecycle event without ever failing the operation.
func (s *DefaultSchedulingService) notify(ctx context.Context, eventType models.AppointmentEventType, appt *models.Appointment) {
	if s.Notifier == nil {
		return
	}

	event := models.AppointmentEvent{
		Type:        eventType,
		Appointment: appt,
	}
	event.Patient = appt.PatientInfo(func(id string) *models.PartyInfo {
		u, err := s.Users.GetByID(ctx, id)
		if err != nil {
			return nil
		}
		return u.Party()
	})
	if appt.PractitionerID != nil {
		if u, err := s.Users.GetByID(ctx, *appt.PractitionerID); err == nil {
			event.Practitioner = u.Party()
		}
	}

	s.Notifier.Dispatch(ctx, event)
}

// scheduleReminder enqueues the pre-appointment reminder; failures are
// logged and swallowed.
func (s *DefaultSchedulingService) scheduleReminder(ctx context.Context, appt *models.Appointment) {
	if s.Reminders == nil {
		return
	}
	if err := s.Reminders.ScheduleReminder(ctx, appt); err != nil {
		utils.GetLogger().Warn("failed to schedule appointment reminder",
			zap.String("appointmentId", appt.ID), zap.Error(err))
	}
}
