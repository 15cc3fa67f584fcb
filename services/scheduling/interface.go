package scheduling

import (
	"context"
	"time"

	"kinecare/models"
)

// Actor identifies the requester of a scheduling operation. The core
// trusts this input; authentication happens at the transport layer.
type Actor struct {
	Role models.Role
	ID   string
}

// Notifier dispatches lifecycle events to patients and practitioners.
// Dispatch is fire-and-forget: the core never blocks on or rolls back
// for a delivery failure.
type Notifier interface {
	Dispatch(ctx context.Context, event models.AppointmentEvent)
}

// ReminderScheduler enqueues an appointment reminder for later delivery.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, appt *models.Appointment) error
}

// CreateRequest is a new booking.
type CreateRequest struct {
	// PractitionerID optionally pre-selects a practitioner; empty means
	// unassigned, open for claiming.
	PractitionerID string
	// PatientID is honored only for admin actors booking on behalf of a
	// registered patient.
	PatientID       string
	GuestInfo       *models.GuestInfo
	Service         models.ServiceLabel
	Subservice      string
	Date            time.Time
	DurationMinutes int
	Notes           string
	Attachment      *models.Attachment
}

// UpdateRequest edits an existing appointment. Nil fields are untouched.
type UpdateRequest struct {
	Date       *time.Time
	Service    *models.ServiceLabel
	Subservice *string
	Notes      *string
	// Reason is recorded in the modification history when the date changes.
	Reason string
}

// OverrideRequest is an admin direct status/date override.
type OverrideRequest struct {
	Status *models.AppointmentStatus
	Date   *time.Time
}

// ListFilter narrows listing operations.
type ListFilter struct {
	Status         *models.AppointmentStatus
	PractitionerID string
	From           *time.Time
	To             *time.Time
	Page           int64
	Limit          int64
}

// Service is the appointment scheduling core: slot allocation, the
// status state machine and the modification policy guard behind one
// façade.
type Service interface {
	Create(ctx context.Context, req CreateRequest, actor Actor) (*models.Appointment, error)
	GetByID(ctx context.Context, id string, actor Actor) (*models.Appointment, error)
	List(ctx context.Context, f ListFilter, actor Actor) ([]models.Appointment, int64, error)
	ListForUser(ctx context.Context, userID string, f ListFilter, actor Actor) ([]models.Appointment, error)
	AvailableForClaim(ctx context.Context, actor Actor) ([]models.Appointment, error)
	BookedSlots(ctx context.Context, from, to time.Time) ([]models.BookedSlot, error)

	Claim(ctx context.Context, id string, actor Actor) (*models.Appointment, error)
	Confirm(ctx context.Context, id string, actor Actor) (*models.Appointment, error)
	Reject(ctx context.Context, id, reason string, actor Actor) (*models.Appointment, error)
	Cancel(ctx context.Context, id, reason string, actor Actor) (*models.Appointment, error)
	Update(ctx context.Context, id string, req UpdateRequest, actor Actor) (*models.Appointment, error)
	MarkPaid(ctx context.Context, id string, actor Actor) (*models.Appointment, error)
	AssignPractitioner(ctx context.Context, id, practitionerID string, actor Actor) (*models.Appointment, error)
	Override(ctx context.Context, id string, req OverrideRequest, actor Actor) (*models.Appointment, error)
	// Purge physically deletes an appointment, bypassing the state
	// machine. Admin only.
	Purge(ctx context.Context, id string, actor Actor) error
}

var _ Service = (*DefaultSchedulingService)(nil)
