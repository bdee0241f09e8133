package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
)

type assistantRepository interface {
	List(ctx context.Context, filter models.AssistantFilter) ([]models.Assistant, int, error)
	FindByID(ctx context.Context, id string) (*models.Assistant, error)
	Create(ctx context.Context, assistant *models.Assistant) error
	Update(ctx context.Context, assistant *models.Assistant) error
	Delete(ctx context.Context, id string) error
}

// AssistantService manages assistant profiles. Every mutation bumps the
// roster generation so derived indexes are rebuilt before the next read.
type AssistantService struct {
	repo      assistantRepository
	roster    *RosterService
	cache     *CacheService
	logger    *zap.Logger
	validator *validator.Validate
}

// NewAssistantService wires assistant profile workflows.
func NewAssistantService(repo assistantRepository, roster *RosterService, cache *CacheService, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{repo: repo, roster: roster, cache: cache, logger: logger, validator: validator.New()}
}

// List returns a filtered page of assistant profiles.
func (s *AssistantService) List(ctx context.Context, filter models.AssistantFilter) ([]models.Assistant, int, error) {
	return s.repo.List(ctx, filter)
}

// Get loads one assistant profile.
func (s *AssistantService) Get(ctx context.Context, id string) (*models.Assistant, error) {
	return s.repo.FindByID(ctx, id)
}

// Create registers a new assistant.
func (s *AssistantService) Create(ctx context.Context, req dto.CreateAssistantRequest) (*models.Assistant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	assistant := &models.Assistant{
		Name:       models.NormalizeName(req.Name),
		Department: strings.ToUpper(strings.TrimSpace(req.Department)),
		Active:     true,
	}
	if req.Active != nil {
		assistant.Active = *req.Active
	}
	if len(req.WeeklyOff) > 0 {
		payload, err := json.Marshal(req.WeeklyOff)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekly off days")
		}
		assistant.WeeklyOff = types.JSONText(payload)
	}

	if err := s.repo.Create(ctx, assistant); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, assistant.Name)
	return assistant, nil
}

// Update modifies a profile.
func (s *AssistantService) Update(ctx context.Context, id string, req dto.UpdateAssistantRequest) (*models.Assistant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	assistant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		assistant.Name = models.NormalizeName(*req.Name)
	}
	if req.Department != nil {
		assistant.Department = strings.ToUpper(strings.TrimSpace(*req.Department))
	}
	if req.Active != nil {
		assistant.Active = *req.Active
	}
	if req.WeeklyOff != nil {
		for _, day := range *req.WeeklyOff {
			if day < 0 || day > 6 {
				return nil, appErrors.Clone(appErrors.ErrValidation, "weekly off days must be 0..6")
			}
		}
		payload, err := json.Marshal(*req.WeeklyOff)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekly off days")
		}
		assistant.WeeklyOff = types.JSONText(payload)
	}

	if err := s.repo.Update(ctx, assistant); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, assistant.Name)
	return assistant, nil
}

// Delete removes a profile.
func (s *AssistantService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, "")
	return nil
}

func (s *AssistantService) afterMutation(ctx context.Context, name string) {
	gen := int64(0)
	if s.roster != nil {
		gen = s.roster.Bump()
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "dashboard:*")
	}
	s.logger.Debug("assistant roster changed", zap.String("assistant", name), zap.Int64("generation", gen))
}
