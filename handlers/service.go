package handlers

import (
	"errors"
	"net/http"
	"time"

	serviceRepo "kinecare/database/repository/service"
	"kinecare/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ServiceHandler exposes the treatment catalog. The catalog only feeds
// the booking forms; the scheduling core treats service labels as opaque.
type ServiceHandler struct {
	Repo serviceRepo.ServiceRepository
}

func NewServiceHandler(repo serviceRepo.ServiceRepository) *ServiceHandler {
	return &ServiceHandler{Repo: repo}
}

// List returns active catalog entries.
func (h *ServiceHandler) List(c *gin.Context) {
	services, err := h.Repo.GetActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list services"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// Get returns one catalog entry.
func (h *ServiceHandler) Get(c *gin.Context) {
	svc, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch service"})
		return
	}
	c.JSON(http.StatusOK, svc)
}

// Create adds a catalog entry (admin).
func (h *ServiceHandler) Create(c *gin.Context) {
	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil || svc.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service name is required"})
		return
	}

	svc.ID = uuid.New().String()
	svc.IsActive = true
	now := time.Now()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	if err := h.Repo.Create(c.Request.Context(), &svc); err != nil {
		if errors.Is(err, serviceRepo.ErrNameExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create service"})
		return
	}
	c.JSON(http.StatusCreated, &svc)
}

// Update edits a catalog entry (admin).
func (h *ServiceHandler) Update(c *gin.Context) {
	existing, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch service"})
		return
	}

	var patch models.Service
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if patch.Name != "" {
		existing.Name = patch.Name
	}
	if patch.Description != "" {
		existing.Description = patch.Description
	}
	if patch.Subservices != nil {
		existing.Subservices = patch.Subservices
	}
	if patch.Price != 0 {
		existing.Price = patch.Price
	}
	if patch.DurationMinutes != 0 {
		existing.DurationMinutes = patch.DurationMinutes
	}
	if patch.Icon != "" {
		existing.Icon = patch.Icon
	}
	existing.UpdatedAt = time.Now()

	if err := h.Repo.Update(c.Request.Context(), existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update service"})
		return
	}
	c.JSON(http.StatusOK, existing)
}

// Delete retires a catalog entry (admin).
func (h *ServiceHandler) Delete(c *gin.Context) {
	if err := h.Repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete service"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "service deleted"})
}
