package scheduling

import (
	"context"

	appointmentRepo "kinecare/database/repository/appointment"
	"kinecare/models"
)

// Update edits an appointment. Every patient-side edit is subject to the
// modification window, whether or not the date changes. Non-date fields
// may then change on any non-terminal appointment; a date change
// additionally goes through the transition table and the slot allocator,
// and is committed together with its history entry in one conditional
// write.
func (s *DefaultSchedulingService) Update(ctx context.Context, id string, req UpdateRequest, actor Actor) (*models.Appointment, error) {
	appt, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if appt.Status.Terminal() {
		return nil, ErrIllegalTransition
	}
	if err := AuthorizeModification(appt, actor.Role, s.now()); err != nil {
		return nil, err
	}

	patch := appointmentRepo.Patch{
		Service:    req.Service,
		Subservice: req.Subservice,
		Notes:      req.Notes,
	}
	expect := appointmentRepo.Expect{
		StatusIn: []models.AppointmentStatus{appt.Status},
	}

	dateChanged := req.Date != nil && !req.Date.Equal(appt.Date)
	if dateChanged {
		out, err := resolveTransition(appt.Status, EventReschedule, actor.Role)
		if err != nil {
			return nil, err
		}

		if err := s.allocator().CheckDateInFuture(*req.Date, s.now()); err != nil {
			return nil, err
		}
		if err := s.allocator().CheckSlotAvailable(ctx, *req.Date, appt.ID); err != nil {
			return nil, err
		}

		patch.Date = req.Date
		if !out.sameStatus {
			patch.Status = &out.to
		}
		patch.AppendHistory = &models.ModificationRecord{
			ModifiedAt:   s.now(),
			ModifiedBy:   actor.ID,
			PreviousDate: appt.Date,
			NewDate:      *req.Date,
			Reason:       req.Reason,
		}
	}

	updated, err := s.Repo.UpdateIf(ctx, appt.ID, expect, patch)
	if err != nil {
		return nil, mapConditionalErr(err)
	}

	if dateChanged {
		s.notify(ctx, models.EventAppointmentMoved, updated)
	}
	return updated, nil
}
