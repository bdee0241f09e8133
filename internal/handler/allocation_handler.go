package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
	"github.com/smilekraft/clinic-ops-api/pkg/response"
)

type allocationService interface {
	AllocateSlot(ctx context.Context, req dto.AllocateSlotRequest) (*dto.AllocateSlotResponse, error)
	AllocateDay(ctx context.Context, req dto.AllocateDayRequest) (*dto.AllocateDayResponse, error)
	CheckAvailability(ctx context.Context, q dto.AvailabilityQuery) (*models.Availability, error)
}

// AllocationHandler exposes the auto-assignment engine over HTTP.
type AllocationHandler struct {
	service allocationService
}

// NewAllocationHandler constructs the handler.
func NewAllocationHandler(service allocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

// AllocateSlot godoc
// @Summary Fill assistant roles on one appointment
// @Tags Allocation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AllocateSlotRequest true "Allocation request"
// @Success 200 {object} response.Envelope
// @Router /allocation/slot [post]
func (h *AllocationHandler) AllocateSlot(c *gin.Context) {
	var req dto.AllocateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid allocation payload"))
		return
	}
	result, err := h.service.AllocateSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AllocateDay godoc
// @Summary Run allocation over a full date's schedule
// @Tags Allocation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AllocateDayRequest true "Batch allocation request"
// @Success 200 {object} response.Envelope
// @Router /allocation/day [post]
func (h *AllocationHandler) AllocateDay(c *gin.Context) {
	var req dto.AllocateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid allocation payload"))
		return
	}
	result, err := h.service.AllocateDay(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CheckAvailability godoc
// @Summary Probe one assistant's availability for a window
// @Tags Allocation
// @Produce json
// @Security BearerAuth
// @Param assistant query string true "Assistant name"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start query string true "Window start"
// @Param end query string true "Window end"
// @Param excludeSlotId query string false "Slot to ignore"
// @Success 200 {object} response.Envelope
// @Router /allocation/availability [get]
func (h *AllocationHandler) CheckAvailability(c *gin.Context) {
	var query dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid availability query"))
		return
	}
	result, err := h.service.CheckAvailability(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
