package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
	"github.com/smilekraft/clinic-ops-api/pkg/response"
)

type doctorProfileService interface {
	List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, int, error)
	Get(ctx context.Context, id string) (*models.Doctor, error)
	Create(ctx context.Context, req dto.CreateDoctorRequest) (*models.Doctor, error)
	Update(ctx context.Context, id string, req dto.UpdateDoctorRequest) (*models.Doctor, error)
	Delete(ctx context.Context, id string) error
}

// DoctorHandler exposes doctor profile management.
type DoctorHandler struct {
	service doctorProfileService
}

// NewDoctorHandler constructs the handler.
func NewDoctorHandler(service doctorProfileService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

// List godoc
// @Summary List doctor profiles
// @Tags Doctors
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name search"
// @Param department query string false "Filter by department"
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} response.Envelope
// @Router /doctors [get]
func (h *DoctorHandler) List(c *gin.Context) {
	filter := models.DoctorFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Department: strings.ToUpper(strings.TrimSpace(c.Query("department"))),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be true or false"))
			return
		}
		filter.Active = &active
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	doctors, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doctors, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Fetch one doctor profile
// @Tags Doctors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id} [get]
func (h *DoctorHandler) Get(c *gin.Context) {
	doctor, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doctor, nil)
}

// Create godoc
// @Summary Register a new doctor
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateDoctorRequest true "New doctor"
// @Success 201 {object} response.Envelope
// @Router /doctors [post]
func (h *DoctorHandler) Create(c *gin.Context) {
	var req dto.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid doctor payload"))
		return
	}
	doctor, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doctor)
}

// Update godoc
// @Summary Edit a doctor profile
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Doctor ID"
// @Param payload body dto.UpdateDoctorRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id} [put]
func (h *DoctorHandler) Update(c *gin.Context) {
	var req dto.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid doctor payload"))
		return
	}
	doctor, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doctor, nil)
}

// Delete godoc
// @Summary Remove a doctor profile
// @Tags Doctors
// @Security BearerAuth
// @Param id path string true "Doctor ID"
// @Success 204
// @Router /doctors/{id} [delete]
func (h *DoctorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
