package models

import (
	"encoding/json"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending                AppointmentStatus = "pending"
	StatusConfirmed              AppointmentStatus = "confirmed"
	StatusAwaitingReconfirmation AppointmentStatus = "awaiting_reconfirmation"
	StatusDone                   AppointmentStatus = "done"
	StatusCancelled              AppointmentStatus = "cancelled"
	StatusRejected               AppointmentStatus = "rejected"
)

// Terminal reports whether the status has no outbound transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusDone || s == StatusCancelled || s == StatusRejected
}

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusAwaitingReconfirmation,
		StatusDone, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// HoldsSlot reports whether an appointment in this status still occupies
// its time slot. Only cancellation frees a slot; rejected and done
// appointments keep theirs.
func (s AppointmentStatus) HoldsSlot() bool {
	return s != StatusCancelled
}

// PaymentStatus tracks whether the session has been paid for.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// GuestInfo is the inline contact snapshot for bookings made without a
// registered account.
type GuestInfo struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

// ServiceLabel identifies the treatment type. Newer documents carry a
// bilingual pair; legacy documents stored a plain string, which the JSON
// codec still accepts and maps onto Primary.
type ServiceLabel struct {
	Primary   string `bson:"primary" json:"primary"`
	Secondary string `bson:"secondary,omitempty" json:"secondary,omitempty"`
}

func (s *ServiceLabel) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		s.Primary = plain
		s.Secondary = ""
		return nil
	}
	type alias ServiceLabel
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = ServiceLabel(a)
	return nil
}

func (s ServiceLabel) IsZero() bool {
	return s.Primary == "" && s.Secondary == ""
}

// Attachment references an externally stored file (medical certificate
// on Cloudinary).
type Attachment struct {
	URL        string    `bson:"url" json:"url"`
	PublicID   string    `bson:"publicId" json:"publicId"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// ModificationRecord is one entry of the append-only reschedule audit log.
type ModificationRecord struct {
	ModifiedAt   time.Time `bson:"modifiedAt" json:"modifiedAt"`
	ModifiedBy   string    `bson:"modifiedBy" json:"modifiedBy"`
	PreviousDate time.Time `bson:"previousDate" json:"previousDate"`
	NewDate      time.Time `bson:"newDate" json:"newDate"`
	Reason       string    `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Appointment is the central entity: one booked treatment slot.
//
// PatientID and GuestInfo are not mutually exclusive at the model level;
// documents carrying both are tolerated and PatientInfo prefers the
// registered account.
type Appointment struct {
	ID             string     `bson:"id" json:"id"`
	PatientID      *string    `bson:"patientId,omitempty" json:"patientId,omitempty"`
	GuestInfo      *GuestInfo `bson:"guestInfo,omitempty" json:"guestInfo,omitempty"`
	PractitionerID *string    `bson:"practitionerId,omitempty" json:"practitionerId,omitempty"`

	Service    ServiceLabel `bson:"service" json:"service"`
	Subservice string       `bson:"subservice,omitempty" json:"subservice,omitempty"`

	// Date is the slot instant. Slot conflict detection compares this for
	// exact equality; DurationMinutes is informational only.
	Date            time.Time `bson:"date" json:"date"`
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`

	Status        AppointmentStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus     `bson:"paymentStatus" json:"paymentStatus"`

	Notes              string      `bson:"notes,omitempty" json:"notes,omitempty"`
	CancellationReason string      `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	Attachment         *Attachment `bson:"attachment,omitempty" json:"attachment,omitempty"`

	ModificationHistory []ModificationRecord `bson:"modificationHistory,omitempty" json:"modificationHistory,omitempty"`

	// Active mirrors Status.HoldsSlot and backs the partial unique index
	// on date that enforces slot exclusivity.
	Active bool `bson:"active" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PartyInfo is the contact snapshot handed to the notification dispatcher.
type PartyInfo struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Guest bool   `json:"isGuest,omitempty"`
}

// PatientInfo resolves the booker's contact details, preferring the
// registered account over the guest snapshot.
func (a *Appointment) PatientInfo(lookup func(id string) *PartyInfo) *PartyInfo {
	if a.PatientID != nil && lookup != nil {
		if p := lookup(*a.PatientID); p != nil {
			return p
		}
	}
	if a.GuestInfo != nil {
		return &PartyInfo{
			Name:  a.GuestInfo.Name,
			Email: a.GuestInfo.Email,
			Phone: a.GuestInfo.Phone,
			Guest: true,
		}
	}
	return nil
}

// BookedSlot is the minimal projection returned to the public calendar.
type BookedSlot struct {
	Date   time.Time         `bson:"date" json:"date"`
	Status AppointmentStatus `bson:"status" json:"status"`
}
