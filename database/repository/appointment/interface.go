package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"kinecare/models"
)

var (
	// ErrNotFound is returned when no appointment matches the given id.
	ErrNotFound = errors.New("appointment not found")
	// ErrSlotTaken is returned when a write collides with the unique
	// active-slot index on date.
	ErrSlotTaken = errors.New("time slot already booked")
	// ErrPreconditionFailed is returned when a conditional update matched
	// the id but not the expected document state.
	ErrPreconditionFailed = errors.New("appointment state changed concurrently")
)

// Filter narrows listing queries.
type Filter struct {
	Status         *models.AppointmentStatus
	PatientID      string
	PractitionerID string
	// Unassigned selects appointments with no practitioner attached.
	Unassigned bool
	From       *time.Time
	To         *time.Time
	Page       int64
	Limit      int64
}

// Expect states the document preconditions of a conditional update. The
// whole check-and-write runs as one atomic operation on the server.
type Expect struct {
	// StatusIn restricts the update to documents currently in one of the
	// given statuses. Empty means any status.
	StatusIn []models.AppointmentStatus
	// Unassigned requires practitionerId to still be unset.
	Unassigned bool
}

// Patch is the set of fields a conditional update may change. Nil fields
// are left untouched. Setting Status also maintains the active flag that
// backs the slot-uniqueness index; setting Date is guarded by that same
// index and fails with ErrSlotTaken on collision.
type Patch struct {
	Status             *models.AppointmentStatus
	PaymentStatus      *models.PaymentStatus
	Date               *time.Time
	PractitionerID     *string
	Service            *models.ServiceLabel
	Subservice         *string
	Notes              *string
	CancellationReason *string
	// AppendHistory appends one reschedule record in the same write as
	// the date change it documents.
	AppendHistory *models.ModificationRecord
}

// Repository contains all appointment storage interactions needed by the
// scheduling core.
type Repository interface {
	Insert(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	// FindActiveByDate returns the non-cancelled appointment occupying the
	// exact timestamp, excluding excludeID, or nil when the slot is free.
	FindActiveByDate(ctx context.Context, date time.Time, excludeID string) (*models.Appointment, error)
	Find(ctx context.Context, f Filter) ([]models.Appointment, int64, error)
	BookedSlots(ctx context.Context, from, to time.Time) ([]models.BookedSlot, error)
	// UpdateIf applies patch to the appointment only if expect still holds,
	// as a single atomic operation, and returns the updated document.
	UpdateIf(ctx context.Context, id string, expect Expect, patch Patch) (*models.Appointment, error)
	// Delete physically removes the document. Administrative purge only;
	// it bypasses the state machine.
	Delete(ctx context.Context, id string) error
}
