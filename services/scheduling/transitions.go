package scheduling

import (
	"context"
	"errors"

	appointmentRepo "kinecare/database/repository/appointment"
	userRepo "kinecare/database/repository/user"
	"kinecare/models"
)

// Claim attaches the requesting practitioner to an unassigned pending
// appointment. The assignment is a single conditional write: when two
// practitioners race for the same appointment, exactly one wins and the
// other sees AlreadyAssigned.
func (s *DefaultSchedulingService) Claim(ctx context.Context, id string, actor Actor) (*models.Appointment, error) {
	if actor.Role != models.RolePractitioner {
		return nil, ErrForbidden
	}
	if _, err := resolveTransition(models.StatusPending, EventClaim, actor.Role); err != nil {
		return nil, err
	}

	practitionerID := actor.ID
	appt, err := s.Repo.UpdateIf(ctx, id,
		appointmentRepo.Expect{
			StatusIn:   []models.AppointmentStatus{models.StatusPending},
			Unassigned: true,
		},
		appointmentRepo.Patch{PractitionerID: &practitionerID},
	)
	if err == nil {
		s.notify(ctx, models.EventAppointmentCreated, appt)
		return appt, nil
	}

	if !errors.Is(err, appointmentRepo.ErrPreconditionFailed) {
		return nil, mapRepoErr(err)
	}

	// The conditional write missed: find out why.
	current, getErr := s.Repo.GetByID(ctx, id)
	if getErr != nil {
		return nil, mapRepoErr(getErr)
	}
	if current.PractitionerID != nil {
		return nil, ErrAlreadyAssigned
	}
	return nil, ErrNotPending
}

// Confirm moves a pending or awaiting-reconfirmation appointment to
// confirmed. Practitioners may confirm only their own assignments.
func (s *DefaultSchedulingService) Confirm(ctx context.Context, id string, actor Actor) (*models.Appointment, error) {
	appt, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Staff() {
		return nil, ErrForbidden
	}

	out, err := resolveTransition(appt.Status, EventConfirm, actor.Role)
	if err != nil {
		return nil, err
	}

	updated, err := s.applyStatus(ctx, appt, out.to, nil)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, models.EventAppointmentConfirmed, updated)
	s.scheduleReminder(ctx, updated)
	return updated, nil
}

// Reject declines an appointment, optionally recording a reason.
func (s *DefaultSchedulingService) Reject(ctx context.Context, id, reason string, actor Actor) (*models.Appointment, error) {
	appt, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Staff() {
		return nil, ErrForbidden
	}

	out, err := resolveTransition(appt.Status, EventReject, actor.Role)
	if err != nil {
		return nil, err
	}

	updated, err := s.applyStatus(ctx, appt, out.to, reasonPtr(reason))
	if err != nil {
		return nil, err
	}

	s.notify(ctx, models.EventAppointmentRejected, updated)
	return updated, nil
}

// Cancel moves any non-terminal appointment to cancelled, freeing its
// slot. Patient-side actors are subject to the modification window.
func (s *DefaultSchedulingService) Cancel(ctx context.Context, id, reason string, actor Actor) (*models.Appointment, error) {
	appt, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	out, err := resolveTransition(appt.Status, EventCancel, actor.Role)
	if err != nil {
		return nil, err
	}
	if out.guarded {
		if err := AuthorizeModification(appt, actor.Role, s.now()); err != nil {
			return nil, err
		}
	}

	updated, err := s.applyStatus(ctx, appt, out.to, reasonPtr(reason))
	if err != nil {
		return nil, err
	}

	s.notify(ctx, models.EventAppointmentCancelled, updated)
	return updated, nil
}

// MarkPaid records payment and completes the appointment in one write.
func (s *DefaultSchedulingService) MarkPaid(ctx context.Context, id string, actor Actor) (*models.Appointment, error) {
	appt, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Staff() {
		return nil, ErrForbidden
	}

	out, err := resolveTransition(appt.Status, EventMarkPaid, actor.Role)
	if err != nil {
		return nil, err
	}

	paid := models.PaymentPaid
	updated, err := s.Repo.UpdateIf(ctx, appt.ID,
		appointmentRepo.Expect{StatusIn: []models.AppointmentStatus{appt.Status}},
		appointmentRepo.Patch{Status: &out.to, PaymentStatus: &paid},
	)
	if err != nil {
		return nil, mapConditionalErr(err)
	}
	return updated, nil
}

// AssignPractitioner is the admin path for attaching a practitioner.
// Assignment alone never advances the status; the practitioner still
// confirms on their own.
func (s *DefaultSchedulingService) AssignPractitioner(ctx context.Context, id, practitionerID string, actor Actor) (*models.Appointment, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	prac, err := s.Users.GetByID(ctx, practitionerID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, NewNotFound("practitioner not found")
		}
		return nil, err
	}
	if prac.Role != models.RolePractitioner {
		return nil, NewNotFound("practitioner not found")
	}

	updated, err := s.Repo.UpdateIf(ctx, id,
		appointmentRepo.Expect{},
		appointmentRepo.Patch{PractitionerID: &prac.ID},
	)
	if err != nil {
		return nil, mapConditionalErr(err)
	}

	s.notify(ctx, models.EventAppointmentCreated, updated)
	return updated, nil
}

// Override is the admin escape hatch: a direct status and/or date change
// that bypasses the transition table but never the slot allocator.
func (s *DefaultSchedulingService) Override(ctx context.Context, id string, req OverrideRequest, actor Actor) (*models.Appointment, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if req.Status == nil && req.Date == nil {
		return nil, NewInvalidInput("status or date is required")
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, NewInvalidInput("invalid status")
	}

	appt, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	patch := appointmentRepo.Patch{Status: req.Status}
	if req.Date != nil && !req.Date.Equal(appt.Date) {
		if err := s.allocator().CheckDateInFuture(*req.Date, s.now()); err != nil {
			return nil, err
		}
		if err := s.allocator().CheckSlotAvailable(ctx, *req.Date, appt.ID); err != nil {
			return nil, err
		}
		patch.Date = req.Date
		patch.AppendHistory = &models.ModificationRecord{
			ModifiedAt:   s.now(),
			ModifiedBy:   actor.ID,
			PreviousDate: appt.Date,
			NewDate:      *req.Date,
			Reason:       "Admin override",
		}
	}

	updated, err := s.Repo.UpdateIf(ctx, appt.ID, appointmentRepo.Expect{}, patch)
	if err != nil {
		return nil, mapConditionalErr(err)
	}

	if patch.Date != nil {
		s.notify(ctx, models.EventAppointmentMoved, updated)
	}
	return updated, nil
}

// Purge physically deletes an appointment. Admin only; bypasses the
// state machine entirely.
func (s *DefaultSchedulingService) Purge(ctx context.Context, id string, actor Actor) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	return nil
}

// applyStatus commits a status transition conditioned on the status the
// decision was made against, so a concurrent transition loses cleanly.
func (s *DefaultSchedulingService) applyStatus(ctx context.Context, appt *models.Appointment, to models.AppointmentStatus, reason *string) (*models.Appointment, error) {
	updated, err := s.Repo.UpdateIf(ctx, appt.ID,
		appointmentRepo.Expect{StatusIn: []models.AppointmentStatus{appt.Status}},
		appointmentRepo.Patch{Status: &to, CancellationReason: reason},
	)
	if err != nil {
		return nil, mapConditionalErr(err)
	}
	return updated, nil
}

// mapConditionalErr treats a lost conditional write as an illegal
// transition: the state the decision was based on no longer holds.
func mapConditionalErr(err error) error {
	if errors.Is(err, appointmentRepo.ErrPreconditionFailed) {
		return ErrIllegalTransition
	}
	return mapRepoErr(err)
}

func reasonPtr(reason string) *string {
	if reason == "" {
		return nil
	}
	return &reason
}
