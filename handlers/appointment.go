package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"kinecare/middleware"
	"kinecare/models"
	"kinecare/services/scheduling"
	"kinecare/services/storage"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler exposes the scheduling core over REST.
type AppointmentHandler struct {
	Svc     scheduling.Service
	Storage storage.StorageService
}

func NewAppointmentHandler(svc scheduling.Service, storageSvc storage.StorageService) *AppointmentHandler {
	return &AppointmentHandler{Svc: svc, Storage: storageSvc}
}

func actor(c *gin.Context) scheduling.Actor {
	id, role := middleware.ActorFromContext(c)
	return scheduling.Actor{Role: role, ID: id}
}

// respondSchedulingError maps core error kinds onto HTTP responses. Slot
// conflicts and window denials carry extra fields the booking frontend
// keys on.
func respondSchedulingError(c *gin.Context, err error) {
	var schedErr *scheduling.Error
	if !errors.As(err, &schedErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
		return
	}

	body := gin.H{"error": schedErr.Message}
	var status int
	switch schedErr.Kind {
	case scheduling.KindInvalidInput, scheduling.KindPastDate:
		status = http.StatusBadRequest
	case scheduling.KindNotFound:
		status = http.StatusNotFound
	case scheduling.KindForbidden:
		status = http.StatusForbidden
	case scheduling.KindWindowClosed:
		status = http.StatusForbidden
		body["hoursRemaining"] = schedErr.HoursRemaining
	case scheduling.KindSlotConflict:
		status = http.StatusConflict
		body["isSlotTaken"] = true
	case scheduling.KindIllegalTransition, scheduling.KindAlreadyAssigned, scheduling.KindNotPending:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}
	c.JSON(status, body)
}

type createAppointmentRequest struct {
	Service         models.ServiceLabel `json:"service" binding:"required"`
	Subservice      string              `json:"subservice"`
	Date            time.Time           `json:"date" binding:"required"`
	DurationMinutes int                 `json:"durationMinutes"`
	Notes           string              `json:"notes"`
	PractitionerID  string              `json:"practitionerId"`
	PatientID       string              `json:"patientId"`
	GuestInfo       *models.GuestInfo   `json:"guestInfo"`
	Attachment      *models.Attachment  `json:"attachment"`
}

// Create books a new appointment. Open to guests; authenticated patients
// book under their own account.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide service and date", "details": err.Error()})
		return
	}

	appt, err := h.Svc.Create(c.Request.Context(), scheduling.CreateRequest{
		Service:         req.Service,
		Subservice:      req.Subservice,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		PractitionerID:  req.PractitionerID,
		PatientID:       req.PatientID,
		GuestInfo:       req.GuestInfo,
		Attachment:      req.Attachment,
	}, actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// List returns role-scoped appointments. Anonymous callers get the
// public slot view only.
func (h *AppointmentHandler) List(c *gin.Context) {
	a := actor(c)
	filter := scheduling.ListFilter{
		PractitionerID: c.Query("practitionerId"),
		Page:           parseInt(c.Query("page"), 0),
		Limit:          parseInt(c.Query("limit"), 0),
	}
	if s := c.Query("status"); s != "" {
		status := models.AppointmentStatus(s)
		filter.Status = &status
	}
	if from, ok := parseTime(c.Query("from")); ok {
		filter.From = &from
	}
	if to, ok := parseTime(c.Query("to")); ok {
		filter.To = &to
	}

	if !a.Role.Staff() {
		h.publicList(c, filter)
		return
	}

	appts, total, err := h.Svc.List(c.Request.Context(), filter, a)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts, "total": total})
}

// publicList exposes occupied slots without any personal details, for the
// booking calendar of unauthenticated visitors.
func (h *AppointmentHandler) publicList(c *gin.Context, filter scheduling.ListFilter) {
	from := time.Now()
	if filter.From != nil {
		from = *filter.From
	}
	to := from.AddDate(0, 2, 0)
	if filter.To != nil {
		to = *filter.To
	}

	slots, err := h.Svc.BookedSlots(c.Request.Context(), from, to)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookedSlots": slots})
}

// Available lists unassigned pending appointments practitioners can claim.
func (h *AppointmentHandler) Available(c *gin.Context) {
	appts, err := h.Svc.AvailableForClaim(c.Request.Context(), actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// BookedSlots returns occupied timestamps in a date range.
func (h *AppointmentHandler) BookedSlots(c *gin.Context) {
	from := time.Now()
	if t, ok := parseTime(c.Query("from")); ok {
		from = t
	}
	to := from.AddDate(0, 2, 0)
	if t, ok := parseTime(c.Query("to")); ok {
		to = t
	}

	slots, err := h.Svc.BookedSlots(c.Request.Context(), from, to)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookedSlots": slots})
}

// Get returns one appointment, subject to ownership.
func (h *AppointmentHandler) Get(c *gin.Context) {
	appt, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// ListForUser returns the appointment history of one user.
func (h *AppointmentHandler) ListForUser(c *gin.Context) {
	filter := scheduling.ListFilter{}
	if s := c.Query("status"); s != "" {
		status := models.AppointmentStatus(s)
		filter.Status = &status
	}

	appts, err := h.Svc.ListForUser(c.Request.Context(), c.Param("userId"), filter, actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

type updateAppointmentRequest struct {
	Date       *time.Time           `json:"date"`
	Service    *models.ServiceLabel `json:"service"`
	Subservice *string              `json:"subservice"`
	Notes      *string              `json:"notes"`
	Reason     string               `json:"reason"`
}

// Update edits an appointment (date, service, notes).
func (h *AppointmentHandler) Update(c *gin.Context) {
	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	appt, err := h.Svc.Update(c.Request.Context(), c.Param("id"), scheduling.UpdateRequest{
		Date:       req.Date,
		Service:    req.Service,
		Subservice: req.Subservice,
		Notes:      req.Notes,
		Reason:     req.Reason,
	}, actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// Take lets a practitioner claim an unassigned appointment.
func (h *AppointmentHandler) Take(c *gin.Context) {
	appt, err := h.Svc.Claim(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// Confirm accepts a pending or re-scheduled appointment.
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	appt, err := h.Svc.Confirm(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// Reject declines an appointment.
func (h *AppointmentHandler) Reject(c *gin.Context) {
	var req reasonRequest
	_ = c.ShouldBindJSON(&req)

	appt, err := h.Svc.Reject(c.Request.Context(), c.Param("id"), req.Reason, actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// Cancel moves an appointment to cancelled, freeing its slot.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	var req reasonRequest
	_ = c.ShouldBindJSON(&req)

	appt, err := h.Svc.Cancel(c.Request.Context(), c.Param("id"), req.Reason, actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// Payment records desk payment and completes the appointment.
func (h *AppointmentHandler) Payment(c *gin.Context) {
	appt, err := h.Svc.MarkPaid(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

type assignRequest struct {
	PractitionerID string `json:"practitionerId" binding:"required"`
}

// Assign attaches a practitioner to an appointment (admin).
func (h *AppointmentHandler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "practitionerId is required"})
		return
	}

	appt, err := h.Svc.AssignPractitioner(c.Request.Context(), c.Param("id"), req.PractitionerID, actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

type overrideRequest struct {
	Status *models.AppointmentStatus `json:"status"`
	Date   *time.Time                `json:"date"`
}

// Override is the admin direct status/date change.
func (h *AppointmentHandler) Override(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	appt, err := h.Svc.Override(c.Request.Context(), c.Param("id"), scheduling.OverrideRequest{
		Status: req.Status,
		Date:   req.Date,
	}, actor(c))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// Delete physically purges an appointment (admin).
func (h *AppointmentHandler) Delete(c *gin.Context) {
	if err := h.Svc.Purge(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		respondSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment deleted"})
}

// UploadCertificate stores a medical certificate and returns the
// attachment reference to include in a booking request.
func (h *AppointmentHandler) UploadCertificate(c *gin.Context) {
	if h.Storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "file uploads are not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file not provided", "details": err.Error()})
		return
	}

	tempFilePath := filepath.Join(os.TempDir(), fileHeader.Filename)
	if err := c.SaveUploadedFile(fileHeader, tempFilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file", "details": err.Error()})
		return
	}
	defer os.Remove(tempFilePath)

	attachment, err := h.Storage.UploadFile(c.Request.Context(), tempFilePath, "certificates")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload file", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, attachment)
}

func parseInt(s string, def int64) int64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
