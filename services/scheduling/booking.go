package scheduling

import (
	"context"
	"errors"

	userRepo "kinecare/database/repository/user"
	"kinecare/models"

	"github.com/google/uuid"
)

const defaultDurationMinutes = 45

// Create books a new appointment in pending status. The slot reservation
// itself is atomic: the insert fails with a conflict when another active
// appointment holds the same timestamp, even under concurrent requests.
func (s *DefaultSchedulingService) Create(ctx context.Context, req CreateRequest, actor Actor) (*models.Appointment, error) {
	if req.Service.IsZero() {
		return nil, NewInvalidInput("please provide service and date")
	}
	if req.Date.IsZero() {
		return nil, NewInvalidInput("please provide service and date")
	}

	if err := s.allocator().CheckDateInFuture(req.Date, s.now()); err != nil {
		return nil, err
	}
	if err := s.allocator().CheckSlotAvailable(ctx, req.Date, ""); err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ID:              uuid.New().String(),
		Service:         req.Service,
		Subservice:      req.Subservice,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentUnpaid,
		Notes:           req.Notes,
		Attachment:      req.Attachment,
	}
	if appt.DurationMinutes <= 0 {
		appt.DurationMinutes = defaultDurationMinutes
	}

	// A pre-selected practitioner must exist and actually be one.
	if req.PractitionerID != "" {
		prac, err := s.Users.GetByID(ctx, req.PractitionerID)
		if err != nil {
			if errors.Is(err, userRepo.ErrNotFound) {
				return nil, NewNotFound("practitioner not found")
			}
			return nil, err
		}
		if prac.Role != models.RolePractitioner {
			return nil, NewNotFound("practitioner not found")
		}
		appt.PractitionerID = &prac.ID
	}

	// Who is the appointment for? Admins may book on behalf of a
	// registered patient; patients book for themselves; everyone else is
	// a guest and must leave contact details. A registered patient ref
	// and guest info are not mutually exclusive at the model level.
	switch {
	case actor.Role == models.RoleAdmin && req.PatientID != "":
		patient, err := s.Users.GetByID(ctx, req.PatientID)
		if err != nil {
			if errors.Is(err, userRepo.ErrNotFound) {
				return nil, NewNotFound("patient not found")
			}
			return nil, err
		}
		if patient.Role != models.RolePatient {
			return nil, NewNotFound("patient not found")
		}
		appt.PatientID = &patient.ID
	case actor.Role == models.RolePatient:
		id := actor.ID
		appt.PatientID = &id
	default:
		if req.GuestInfo == nil || req.GuestInfo.Name == "" || req.GuestInfo.Phone == "" {
			return nil, NewInvalidInput("guest bookings require name and phone number")
		}
		appt.GuestInfo = req.GuestInfo
	}

	if err := s.Repo.Insert(ctx, appt); err != nil {
		return nil, mapRepoErr(err)
	}

	// The booker is only notified once a practitioner is in the loop.
	if appt.PractitionerID != nil {
		s.notify(ctx, models.EventAppointmentCreated, appt)
	}

	return appt, nil
}
