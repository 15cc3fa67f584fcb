package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"kinecare/config"
	appointmentRepo "kinecare/database/repository/appointment"
	"kinecare/models"
	"kinecare/services/notification"
	"kinecare/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitReminderWorker runs the async reminder worker in the background.
func InitReminderWorker(appts appointmentRepo.Repository, dispatcher *notification.Dispatcher) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(appts, dispatcher))

	go monitorRedisConnection()

	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(appts appointmentRepo.Repository, dispatcher *notification.Dispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] invalid payload: %v", err)
			return err
		}

		appt, err := appts.GetByID(ctx, p.AppointmentID)
		if err != nil {
			// Purged since the reminder was queued; nothing to do.
			log.Printf("[ReminderHandler] appointment %s gone, dropping reminder", p.AppointmentID)
			return nil
		}

		// A reminder is only worth sending for a still-confirmed
		// appointment at the time it was queued for. Cancellations and
		// reschedules make the queued reminder stale.
		if appt.Status != models.StatusConfirmed || !appt.Date.Equal(p.ScheduledFor) {
			log.Printf("[ReminderHandler] appointment %s changed since queueing, dropping reminder", p.AppointmentID)
			return nil
		}

		log.Printf("[ReminderHandler] sending reminder for appointment %s at %s", appt.ID, appt.Date)
		dispatcher.DispatchAppointment(ctx, models.EventAppointmentReminder, appt)
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ReminderWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
