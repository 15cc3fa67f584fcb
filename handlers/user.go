package handlers

import (
	"errors"
	"net/http"

	"kinecare/middleware"
	"kinecare/models"
	"kinecare/services/user"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes account management and the practitioner directory.
type UserHandler struct {
	Svc user.UserService
}

func NewUserHandler(svc user.UserService) *UserHandler {
	return &UserHandler{Svc: svc}
}

// List returns accounts, optionally filtered by role (admin).
func (h *UserHandler) List(c *gin.Context) {
	role := models.Role(c.Query("role"))
	activeOnly := c.Query("activeOnly") == "true"

	users, err := h.Svc.List(c.Request.Context(), role, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Practitioners returns the public practitioner directory.
func (h *UserHandler) Practitioners(c *gin.Context) {
	profiles, err := h.Svc.Practitioners(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list practitioners"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"practitioners": profiles})
}

// Get returns one account. Users may read themselves; admins anyone.
func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if middleware.RoleFromContext(c) != models.RoleAdmin && middleware.UserIDFromContext(c) != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	u, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// Update edits a profile. Users may edit themselves; admins anyone.
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if middleware.RoleFromContext(c) != models.RoleAdmin && middleware.UserIDFromContext(c) != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var upd user.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), id, upd)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	c.JSON(http.StatusOK, u)
}

// Delete deactivates an account (admin).
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deactivated"})
}
