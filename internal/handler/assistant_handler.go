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

type assistantProfileService interface {
	List(ctx context.Context, filter models.AssistantFilter) ([]models.Assistant, int, error)
	Get(ctx context.Context, id string) (*models.Assistant, error)
	Create(ctx context.Context, req dto.CreateAssistantRequest) (*models.Assistant, error)
	Update(ctx context.Context, id string, req dto.UpdateAssistantRequest) (*models.Assistant, error)
	Delete(ctx context.Context, id string) error
}

// AssistantHandler exposes assistant profile management.
type AssistantHandler struct {
	service assistantProfileService
}

// NewAssistantHandler constructs the handler.
func NewAssistantHandler(service assistantProfileService) *AssistantHandler {
	return &AssistantHandler{service: service}
}

// List godoc
// @Summary List assistant profiles
// @Tags Assistants
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name search"
// @Param department query string false "Filter by department"
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} response.Envelope
// @Router /assistants [get]
func (h *AssistantHandler) List(c *gin.Context) {
	filter := models.AssistantFilter{
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

	assistants, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assistants, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Fetch one assistant profile
// @Tags Assistants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assistant ID"
// @Success 200 {object} response.Envelope
// @Router /assistants/{id} [get]
func (h *AssistantHandler) Get(c *gin.Context) {
	assistant, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assistant, nil)
}

// Create godoc
// @Summary Register a new assistant
// @Tags Assistants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAssistantRequest true "New assistant"
// @Success 201 {object} response.Envelope
// @Router /assistants [post]
func (h *AssistantHandler) Create(c *gin.Context) {
	var req dto.CreateAssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assistant payload"))
		return
	}
	assistant, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assistant)
}

// Update godoc
// @Summary Edit an assistant profile
// @Tags Assistants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assistant ID"
// @Param payload body dto.UpdateAssistantRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Router /assistants/{id} [put]
func (h *AssistantHandler) Update(c *gin.Context) {
	var req dto.UpdateAssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assistant payload"))
		return
	}
	assistant, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assistant, nil)
}

// Delete godoc
// @Summary Remove an assistant profile
// @Tags Assistants
// @Security BearerAuth
// @Param id path string true "Assistant ID"
// @Success 204
// @Router /assistants/{id} [delete]
func (h *AssistantHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
