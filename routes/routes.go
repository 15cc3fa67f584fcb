package routes

import (
	"time"

	"kinecare/config"
	"kinecare/handlers"
	"kinecare/middleware"
	"kinecare/models"
	"kinecare/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAppointmentRoutes registers the scheduling endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		// Booking and slot browsing are open to guests; a valid token
		// upgrades the actor to their account role.
		api.POST("", middleware.OptionalAuth(), hb.Appointments.Create)
		api.GET("", middleware.OptionalAuth(), hb.Appointments.List)
		api.GET("/booked-slots", hb.Appointments.BookedSlots)
		api.POST("/upload-certificate", hb.Appointments.UploadCertificate)

		authed := api.Group("")
		authed.Use(middleware.RequireAuth())
		authed.GET("/available", hb.Appointments.Available)
		authed.GET("/user/:userId", hb.Appointments.ListForUser)
		authed.GET("/:id", hb.Appointments.Get)
		authed.PUT("/:id", hb.Appointments.Update)
		authed.POST("/:id/take", hb.Appointments.Take)
		authed.POST("/:id/confirm", hb.Appointments.Confirm)
		authed.POST("/:id/reject", hb.Appointments.Reject)
		authed.POST("/:id/cancel", hb.Appointments.Cancel)
		authed.POST("/:id/payment", hb.Appointments.Payment)

		admin := api.Group("")
		admin.Use(middleware.RequireAuth(), middleware.RequireRoles(models.RoleAdmin))
		admin.PATCH("/:id/assign", hb.Appointments.Assign)
		admin.PATCH("/:id", hb.Appointments.Override)
		admin.DELETE("/:id", hb.Appointments.Delete)
	}
}

// RegisterAuthRoutes registers registration and the token lifecycle.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", middleware.OptionalAuth(), hb.Auth.Register)
		api.POST("/login", hb.Auth.Login)
		api.POST("/refresh", hb.Auth.Refresh)

		api.POST("/logout", middleware.RequireAuth(), hb.Auth.Logout)
		api.GET("/me", middleware.RequireAuth(), hb.Auth.Me)
	}
}

// RegisterUserRoutes registers account management endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.GET("/practitioners", hb.Users.Practitioners)

		api.GET("", middleware.RequireAuth(), middleware.RequireRoles(models.RoleAdmin), hb.Users.List)
		api.GET("/:id", middleware.RequireAuth(), hb.Users.Get)
		api.PUT("/:id", middleware.RequireAuth(), hb.Users.Update)
		api.DELETE("/:id", middleware.RequireAuth(), middleware.RequireRoles(models.RoleAdmin), hb.Users.Delete)
	}
}

// RegisterServiceRoutes registers the treatment catalog.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.GET("", hb.Services.List)
		api.GET("/:id", hb.Services.Get)

		admin := api.Group("")
		admin.Use(middleware.RequireAuth(), middleware.RequireRoles(models.RoleAdmin))
		admin.POST("", hb.Services.Create)
		admin.PUT("/:id", hb.Services.Update)
		admin.DELETE("/:id", hb.Services.Delete)
	}
}

// RegisterContactRoutes registers the public contact form and its triage.
func RegisterContactRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/contact")
	{
		api.POST("", hb.Contact.Submit)

		admin := api.Group("")
		admin.Use(middleware.RequireAuth(), middleware.RequireRoles(models.RoleAdmin))
		admin.GET("", hb.Contact.List)
		admin.PATCH("/:id", hb.Contact.UpdateStatus)
	}
}

// RegisterNotificationRoutes registers the dispatch audit log.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	api.Use(middleware.RequireAuth())
	{
		api.GET("", middleware.RequireRoles(models.RoleAdmin), hb.Notifications.List)
		api.POST("/email", middleware.RequireRoles(models.RoleAdmin, models.RolePractitioner), hb.Notifications.SendEmail)
	}
}

// RegisterHealthRoute registers the health snapshot endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// SetupRouter wires middleware and all route groups.
func SetupRouter(hb *handlers.HandlerBundle) *gin.Engine {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(utils.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AppConfig.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAppointmentRoutes(r, hb)
	RegisterAuthRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterServiceRoutes(r, hb)
	RegisterContactRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterHealthRoute(r)

	return r
}
