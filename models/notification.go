package models

import "time"

// NotificationChannel is the delivery mechanism of a notification.
type NotificationChannel string

const (
	ChannelEmail  NotificationChannel = "email"
	ChannelPush   NotificationChannel = "push"
	ChannelSystem NotificationChannel = "system"
)

// NotificationStatus is the delivery outcome recorded on the audit doc.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is the persisted audit record of one dispatch attempt.
// The scheduling core never reads these back; they exist for the admin
// dashboard and for debugging delivery issues.
type Notification struct {
	ID     string `bson:"id" json:"id"`
	UserID string `bson:"userId,omitempty" json:"userId,omitempty"`

	Recipient PartyInfo `bson:"recipient" json:"recipient"`

	Channel NotificationChannel `bson:"channel" json:"channel"`
	Subject string              `bson:"subject,omitempty" json:"subject,omitempty"`
	Message string              `bson:"message" json:"message"`

	Status        NotificationStatus `bson:"status" json:"status"`
	AppointmentID string             `bson:"appointmentId,omitempty" json:"appointmentId,omitempty"`

	Metadata NotificationMetadata `bson:"metadata,omitempty" json:"metadata,omitempty"`

	SentAt    time.Time `bson:"sentAt" json:"sentAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// NotificationMetadata carries provider-specific delivery details.
type NotificationMetadata struct {
	Provider  string `bson:"provider,omitempty" json:"provider,omitempty"`
	MessageID string `bson:"messageId,omitempty" json:"messageId,omitempty"`
	Error     string `bson:"error,omitempty" json:"error,omitempty"`
}

// AppointmentEventType names a lifecycle event worth notifying about.
type AppointmentEventType string

const (
	EventAppointmentCreated   AppointmentEventType = "appointment_created"
	EventAppointmentConfirmed AppointmentEventType = "appointment_confirmed"
	EventAppointmentRejected  AppointmentEventType = "appointment_rejected"
	EventAppointmentCancelled AppointmentEventType = "appointment_cancelled"
	EventAppointmentMoved     AppointmentEventType = "appointment_moved"
	EventAppointmentReminder  AppointmentEventType = "appointment_reminder"
)

// AppointmentEvent is the payload handed to the notification dispatcher
// after a successful transition. Dispatch is fire-and-forget; failures
// never affect the appointment's committed state.
type AppointmentEvent struct {
	Type         AppointmentEventType `json:"type"`
	Appointment  *Appointment         `json:"appointment"`
	Patient      *PartyInfo           `json:"patient,omitempty"`
	Practitioner *PartyInfo           `json:"practitioner,omitempty"`
}
