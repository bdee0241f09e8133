package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
	"github.com/smilekraft/clinic-ops-api/pkg/response"
)

type timeBlockService interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.TimeBlock, error)
	Create(ctx context.Context, req dto.CreateTimeBlockRequest) (*models.TimeBlock, error)
	Delete(ctx context.Context, id string) error
}

// TimeBlockHandler exposes ad hoc exclusion windows.
type TimeBlockHandler struct {
	service timeBlockService
}

// NewTimeBlockHandler constructs the handler.
func NewTimeBlockHandler(service timeBlockService) *TimeBlockHandler {
	return &TimeBlockHandler{service: service}
}

// List godoc
// @Summary List time blocks for a date
// @Tags TimeBlocks
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /time-blocks [get]
func (h *TimeBlockHandler) List(c *gin.Context) {
	date, ok := dateFromQuery(c, "date")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD"))
		return
	}
	blocks, err := h.service.ListByDate(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks, nil)
}

// Create godoc
// @Summary Block an assistant for part of a date
// @Tags TimeBlocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTimeBlockRequest true "New block"
// @Success 201 {object} response.Envelope
// @Router /time-blocks [post]
func (h *TimeBlockHandler) Create(c *gin.Context) {
	var req dto.CreateTimeBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid time block payload"))
		return
	}
	block, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, block)
}

// Delete godoc
// @Summary Remove a time block
// @Tags TimeBlocks
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 204
// @Router /time-blocks/{id} [delete]
func (h *TimeBlockHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
