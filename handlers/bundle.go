package handlers

// HandlerBundle groups all HTTP handlers for route registration.
type HandlerBundle struct {
	Appointments  *AppointmentHandler
	Auth          *AuthHandler
	Users         *UserHandler
	Services      *ServiceHandler
	Contact       *ContactHandler
	Notifications *NotificationHandler
}
