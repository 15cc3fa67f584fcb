package tasks

import (
	"context"
	"encoding/json"
	"time"

	"kinecare/config"
	"kinecare/models"
	"kinecare/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeSendReminder = "reminder:send"

// ReminderLeadTime is how long before the appointment the reminder fires.
const ReminderLeadTime = 24 * time.Hour

// ReminderPayload is the queued reminder task body. The appointment is
// re-read at fire time so stale reminders for cancelled or moved
// appointments can be dropped.
type ReminderPayload struct {
	AppointmentID string    `json:"appointmentId"`
	ScheduledFor  time.Time `json:"scheduledFor"`
}

// NewReminderTask builds the asynq task delivering a reminder at fireAt.
func NewReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}
	return task, opts, nil
}

// AsynqReminderScheduler enqueues appointment reminders on Redis.
type AsynqReminderScheduler struct {
	client *asynq.Client
}

// NewAsynqReminderScheduler connects a task client to the reminder queue.
func NewAsynqReminderScheduler() *AsynqReminderScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	})
	return &AsynqReminderScheduler{client: client}
}

// ScheduleReminder queues a reminder 24 hours before the appointment.
// Appointments closer than the lead time get no reminder at all; the
// confirmation they just received covers it.
func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, appt *models.Appointment) error {
	fireAt := appt.Date.Add(-ReminderLeadTime)
	if !fireAt.After(time.Now()) {
		return nil
	}

	task, opts, err := NewReminderTask(ReminderPayload{
		AppointmentID: appt.ID,
		ScheduledFor:  appt.Date,
	}, fireAt)
	if err != nil {
		return err
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return err
	}
	utils.GetLogger().Debug("reminder queued",
		zap.String("appointmentId", appt.ID),
		zap.String("taskId", info.ID),
		zap.Time("fireAt", fireAt))
	return nil
}

// Close releases the underlying Redis connection.
func (s *AsynqReminderScheduler) Close() error {
	return s.client.Close()
}
