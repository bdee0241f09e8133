package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
	"github.com/smilekraft/clinic-ops-api/pkg/response"
)

type appointmentService interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Appointment, error)
	Get(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, req dto.CreateAppointmentRequest) (*models.Appointment, error)
	Update(ctx context.Context, id string, req dto.UpdateAppointmentRequest) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateStatusRequest) (*models.Appointment, error)
	Delete(ctx context.Context, id string) error
}

// AppointmentHandler exposes the day schedule over HTTP.
type AppointmentHandler struct {
	service appointmentService
}

// NewAppointmentHandler constructs the handler.
func NewAppointmentHandler(service appointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// List godoc
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param doctor query string false "Filter by doctor name"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	filter := models.AppointmentFilter{
		DoctorName: strings.TrimSpace(c.Query("doctor")),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD"))
			return
		}
		filter.Date = &date
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.AppointmentStatus(strings.ToUpper(raw))
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown appointment status"))
			return
		}
		filter.Status = &status
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	appts, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appts, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Fetch one appointment
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	appt, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}

// Create godoc
// @Summary Register a new appointment slot
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAppointmentRequest true "New appointment"
// @Success 201 {object} response.Envelope
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid appointment payload"))
		return
	}
	appt, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appt)
}

// Update godoc
// @Summary Edit an appointment under optimistic concurrency
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param payload body dto.UpdateAppointmentRequest true "Changes with saveVersion"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(c *gin.Context) {
	var req dto.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid appointment payload"))
		return
	}
	appt, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}

// UpdateStatus godoc
// @Summary Transition an appointment's lifecycle status
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param payload body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	appt, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt, nil)
}

// Delete godoc
// @Summary Remove an appointment slot
// @Tags Appointments
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 204
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
