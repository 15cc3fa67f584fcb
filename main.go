package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kinecare/config"
	"kinecare/cron"
	"kinecare/database"
	appointmentRepoPkg "kinecare/database/repository/appointment"
	contactRepoPkg "kinecare/database/repository/contact"
	notificationRepoPkg "kinecare/database/repository/notification"
	serviceRepoPkg "kinecare/database/repository/service"
	userRepoPkg "kinecare/database/repository/user"
	"kinecare/handlers"
	"kinecare/routes"
	"kinecare/services/notification"
	"kinecare/services/scheduling"
	"kinecare/services/storage"
	"kinecare/services/tasks"
	"kinecare/services/user"
	"kinecare/utils"

	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitAuthCache()
	utils.FirebaseInit()

	// repositories.
	apptRepo := appointmentRepoPkg.NewMongoAppointmentRepo()
	usrRepo := userRepoPkg.NewMongoUserRepo()
	svcRepo := serviceRepoPkg.NewMongoServiceRepo()
	contactRepo := contactRepoPkg.NewMongoContactRepo()
	notifRepo := notificationRepoPkg.NewMongoNotificationRepo()

	// services.
	dispatcher := notification.NewDispatcher(usrRepo, notifRepo)
	reminders := tasks.NewAsynqReminderScheduler()
	defer reminders.Close()

	schedulingService := &scheduling.DefaultSchedulingService{
		Repo:      apptRepo,
		Users:     usrRepo,
		Notifier:  dispatcher,
		Reminders: reminders,
	}
	userService := &user.DefaultUserService{Repo: usrRepo}

	var storageService storage.StorageService
	if cld, err := storage.NewCloudinaryStorage(); err != nil {
		logger.Sugar().Warnf("main: cloudinary unavailable, uploads disabled: %v", err)
	} else {
		storageService = cld
	}

	var emailSender notification.EmailSender
	if sender := notification.NewSendGridSender(); sender != nil {
		emailSender = sender
	}

	// handlers.
	handlerBundle := &handlers.HandlerBundle{
		Appointments:  handlers.NewAppointmentHandler(schedulingService, storageService),
		Auth:          handlers.NewAuthHandler(userService),
		Users:         handlers.NewUserHandler(userService),
		Services:      handlers.NewServiceHandler(svcRepo),
		Contact:       handlers.NewContactHandler(contactRepo, emailSender),
		Notifications: handlers.NewNotificationHandler(notifRepo, emailSender),
	}

	router := routes.SetupRouter(handlerBundle)

	// background workers.
	cron.InitReminderWorker(apptRepo, dispatcher)
	utils.StartHealthMonitor([]*redis.Client{utils.GetAuthCacheClient()}, database.MongoClient)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
