package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
	"github.com/smilekraft/clinic-ops-api/pkg/timeutil"
)

type timeBlockRepository interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.TimeBlock, error)
	Create(ctx context.Context, block *models.TimeBlock) error
	Delete(ctx context.Context, id string) error
}

// TimeBlockService manages ad hoc exclusion windows.
type TimeBlockService struct {
	repo      timeBlockRepository
	logger    *zap.Logger
	validator *validator.Validate
}

// NewTimeBlockService wires time block workflows.
func NewTimeBlockService(repo timeBlockRepository, logger *zap.Logger) *TimeBlockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeBlockService{repo: repo, logger: logger, validator: validator.New()}
}

// ListByDate returns all blocks recorded on a date.
func (s *TimeBlockService) ListByDate(ctx context.Context, date time.Time) ([]models.TimeBlock, error) {
	return s.repo.ListByDate(ctx, date)
}

// Create records a block. Unlike appointment times, block windows must
// parse: a block that cannot be placed on the clock protects nobody.
func (s *TimeBlockService) Create(ctx context.Context, req dto.CreateTimeBlockRequest) (*models.TimeBlock, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	if _, ok := timeutil.ParseClock(req.StartTime); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unparseable block start time")
	}
	if _, ok := timeutil.ParseClock(req.EndTime); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unparseable block end time")
	}

	block := &models.TimeBlock{
		AssistantName: models.NormalizeName(req.AssistantName),
		Date:          date,
		Reason:        req.Reason,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	}
	if err := s.repo.Create(ctx, block); err != nil {
		return nil, err
	}
	s.logger.Info("time block created",
		zap.String("assistant", block.AssistantName),
		zap.String("date", req.Date),
		zap.String("window", req.StartTime+"-"+req.EndTime),
	)
	return block, nil
}

// Delete removes a block.
func (s *TimeBlockService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
