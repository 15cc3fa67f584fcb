package handlers

import (
	"errors"
	"net/http"
	"time"

	"kinecare/config"
	contactRepo "kinecare/database/repository/contact"
	"kinecare/models"
	"kinecare/services/notification"
	"kinecare/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactHandler receives public contact-form submissions and lets admins
// triage them.
type ContactHandler struct {
	Repo  contactRepo.ContactRepository
	Email notification.EmailSender // optional, forwards submissions to the clinic inbox
}

func NewContactHandler(repo contactRepo.ContactRepository, email notification.EmailSender) *ContactHandler {
	return &ContactHandler{Repo: repo, Email: email}
}

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// Submit stores a contact message and forwards it to the clinic inbox.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and message are required", "details": err.Error()})
		return
	}

	msg := &models.Contact{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    models.ContactNew,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := h.Repo.Insert(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit message, please try again"})
		return
	}

	if h.Email != nil && config.AppConfig.AdminEmail != "" {
		go func(m models.Contact) {
			ctx, cancel := contextWithTimeout(10 * time.Second)
			defer cancel()
			if _, err := h.Email.Send(ctx, notification.EmailMessage{
				To:      config.AppConfig.AdminEmail,
				ToName:  "Clinic",
				Subject: "New contact message: " + m.Subject,
				Body:    m.Message + "\n\nFrom: " + m.Name + " <" + m.Email + "> " + m.Phone,
			}); err != nil {
				utils.GetLogger().Warn("failed to forward contact message", zap.Error(err))
			}
		}(*msg)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "thank you, we will get back to you shortly"})
}

// List returns submissions, optionally filtered by status (admin).
func (h *ContactHandler) List(c *gin.Context) {
	items, err := h.Repo.List(c.Request.Context(), models.ContactStatus(c.Query("status")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": items})
}

type contactStatusRequest struct {
	Status models.ContactStatus `json:"status" binding:"required"`
	Notes  string               `json:"notes"`
}

// UpdateStatus moves a submission through triage (admin).
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	var req contactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	err := h.Repo.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		if errors.Is(err, contactRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "contact updated"})
}
