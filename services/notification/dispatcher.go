package notification

import (
	"context"
	"time"

	notificationRepo "kinecare/database/repository/notification"
	userRepo "kinecare/database/repository/user"
	"kinecare/models"
	"kinecare/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dispatchTimeout = 15 * time.Second

// Dispatcher fans one appointment event out to its recipients over email
// and push, and records an audit document per delivery attempt. All of it
// is fire-and-forget: callers never learn about delivery failures.
type Dispatcher struct {
	email EmailSender
	users userRepo.UserRepository
	audit notificationRepo.NotificationRepository
}

// NewDispatcher wires the dispatcher from the app configuration. Email and
// push channels degrade to disabled when unconfigured.
func NewDispatcher(users userRepo.UserRepository, audit notificationRepo.NotificationRepository) *Dispatcher {
	d := &Dispatcher{users: users, audit: audit}
	if sender := NewSendGridSender(); sender != nil {
		d.email = sender
	}
	return d
}

// Dispatch delivers the event asynchronously. The request context is not
// reused; delivery gets its own deadline so an already-finished request
// cannot cancel it.
func (d *Dispatcher) Dispatch(_ context.Context, event models.AppointmentEvent) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				utils.GetLogger().Error("notification dispatch panicked", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		d.deliver(ctx, event)
	}()
}

// DispatchAppointment resolves the appointment's parties and dispatches
// the event. Used by workers that hold a bare appointment document.
func (d *Dispatcher) DispatchAppointment(ctx context.Context, eventType models.AppointmentEventType, appt *models.Appointment) {
	event := models.AppointmentEvent{Type: eventType, Appointment: appt}
	event.Patient = appt.PatientInfo(func(id string) *models.PartyInfo {
		u, err := d.users.GetByID(ctx, id)
		if err != nil {
			return nil
		}
		return u.Party()
	})
	if appt.PractitionerID != nil {
		if u, err := d.users.GetByID(ctx, *appt.PractitionerID); err == nil {
			event.Practitioner = u.Party()
		}
	}
	d.Dispatch(ctx, event)
}

func (d *Dispatcher) deliver(ctx context.Context, event models.AppointmentEvent) {
	if event.Appointment == nil {
		return
	}

	if event.Patient != nil {
		d.deliverTo(ctx, event, event.Patient, patientContent(event))
	}
	if event.Practitioner != nil && practitionerCares(event.Type) {
		d.deliverTo(ctx, event, event.Practitioner, practitionerContent(event))
	}
}

// practitionerCares filters events the practitioner side is told about.
func practitionerCares(t models.AppointmentEventType) bool {
	switch t {
	case models.EventAppointmentCreated, models.EventAppointmentCancelled,
		models.EventAppointmentMoved, models.EventAppointmentReminder:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) deliverTo(ctx context.Context, event models.AppointmentEvent, recipient *models.PartyInfo, msg content) {
	log := utils.GetLogger().With(
		zap.String("event", string(event.Type)),
		zap.String("appointmentId", event.Appointment.ID),
		zap.String("recipient", recipient.Name),
	)

	if recipient.Email != "" && d.email != nil {
		id, err := d.email.Send(ctx, EmailMessage{
			To:      recipient.Email,
			ToName:  recipient.Name,
			Subject: msg.subject,
			Body:    msg.body,
		})
		d.record(ctx, event, recipient, models.ChannelEmail, msg, "sendgrid", id, err)
		if err != nil {
			log.Warn("email delivery failed", zap.Error(err))
		}
	}

	if token := d.fcmToken(ctx, recipient.ID); token != "" {
		id, err := sendPush(ctx, token, msg.subject, msg.body, map[string]string{
			"type":          string(event.Type),
			"appointmentId": event.Appointment.ID,
		})
		d.record(ctx, event, recipient, models.ChannelPush, msg, "fcm", id, err)
		if err != nil {
			log.Warn("push delivery failed", zap.Error(err))
		}
	}
}

// fcmToken looks up the registered device token of a party, if any.
// Guests have no account and therefore no push channel.
func (d *Dispatcher) fcmToken(ctx context.Context, userID string) string {
	if userID == "" || utils.FCMClient == nil {
		return ""
	}
	u, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return u.FCMToken
}

// record persists the audit document for one delivery attempt.
func (d *Dispatcher) record(ctx context.Context, event models.AppointmentEvent, recipient *models.PartyInfo, channel models.NotificationChannel, msg content, provider, messageID string, deliveryErr error) {
	if d.audit == nil {
		return
	}

	n := &models.Notification{
		ID:            uuid.New().String(),
		UserID:        recipient.ID,
		Recipient:     *recipient,
		Channel:       channel,
		Subject:       msg.subject,
		Message:       msg.body,
		Status:        models.NotificationSent,
		AppointmentID: event.Appointment.ID,
		Metadata:      models.NotificationMetadata{Provider: provider, MessageID: messageID},
	}
	if deliveryErr != nil {
		n.Status = models.NotificationFailed
		n.Metadata.Error = deliveryErr.Error()
	}

	if err := d.audit.Insert(ctx, n); err != nil {
		utils.GetLogger().Warn("failed to record notification audit", zap.Error(err))
	}
}
