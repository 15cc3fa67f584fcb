package handlers

import (
	"context"
	"net/http"
	"time"

	notificationRepo "kinecare/database/repository/notification"
	"kinecare/services/notification"

	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the dispatch audit log and a manual email
// endpoint for the front desk.
type NotificationHandler struct {
	Repo  notificationRepo.NotificationRepository
	Email notification.EmailSender // optional
}

func NewNotificationHandler(repo notificationRepo.NotificationRepository, email notification.EmailSender) *NotificationHandler {
	return &NotificationHandler{Repo: repo, Email: email}
}

// List returns recent dispatch records (admin).
func (h *NotificationHandler) List(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 100)

	var err error
	var items interface{}
	if userID := c.Query("userId"); userID != "" {
		items, err = h.Repo.ListForUser(c.Request.Context(), userID, limit)
	} else {
		items, err = h.Repo.ListRecent(c.Request.Context(), limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

type sendEmailRequest struct {
	To      string `json:"to" binding:"required"`
	ToName  string `json:"toName"`
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// SendEmail sends an ad-hoc email from the front desk (admin).
func (h *NotificationHandler) SendEmail(c *gin.Context) {
	if h.Email == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "the email channel is not configured"})
		return
	}

	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to, subject and body are required"})
		return
	}

	if _, err := h.Email.Send(c.Request.Context(), notification.EmailMessage{
		To:      req.To,
		ToName:  req.ToName,
		Subject: req.Subject,
		Body:    req.Body,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send email", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email sent"})
}

// contextWithTimeout is a small helper for handler-spawned goroutines
// that must not inherit the request context.
func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
