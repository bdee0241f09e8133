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

type attendanceService interface {
	PunchIn(ctx context.Context, req dto.PunchRequest) error
	PunchOut(ctx context.Context, req dto.PunchRequest) error
	Board(ctx context.Context, date time.Time) ([]models.PunchSummary, error)
}

// AttendanceHandler exposes punch tracking.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// PunchIn godoc
// @Summary Record an assistant's arrival
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PunchRequest true "Punch"
// @Success 200 {object} response.Envelope
// @Router /attendance/punch-in [post]
func (h *AttendanceHandler) PunchIn(c *gin.Context) {
	h.punch(c, h.service.PunchIn)
}

// PunchOut godoc
// @Summary Record an assistant's departure
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PunchRequest true "Punch"
// @Success 200 {object} response.Envelope
// @Router /attendance/punch-out [post]
func (h *AttendanceHandler) PunchOut(c *gin.Context) {
	h.punch(c, h.service.PunchOut)
}

func (h *AttendanceHandler) punch(c *gin.Context, fn func(context.Context, dto.PunchRequest) error) {
	var req dto.PunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid punch payload"))
		return
	}
	if err := fn(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"recorded": true}, nil)
}

// Board godoc
// @Summary Attendance board for a date
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) Board(c *gin.Context) {
	date, ok := dateFromQuery(c, "date")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD"))
		return
	}
	rows, err := h.service.Board(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
