package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
)

type doctorRepository interface {
	List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, int, error)
	FindByID(ctx context.Context, id string) (*models.Doctor, error)
	Create(ctx context.Context, doctor *models.Doctor) error
	Update(ctx context.Context, doctor *models.Doctor) error
	Delete(ctx context.Context, id string) error
}

// DoctorService manages doctor profiles. Mutations bump the roster
// generation the same way assistant edits do.
type DoctorService struct {
	repo      doctorRepository
	roster    *RosterService
	cache     *CacheService
	logger    *zap.Logger
	validator *validator.Validate
}

// NewDoctorService wires doctor profile workflows.
func NewDoctorService(repo doctorRepository, roster *RosterService, cache *CacheService, logger *zap.Logger) *DoctorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DoctorService{repo: repo, roster: roster, cache: cache, logger: logger, validator: validator.New()}
}

// List returns a filtered page of doctor profiles.
func (s *DoctorService) List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, int, error) {
	return s.repo.List(ctx, filter)
}

// Get loads one doctor profile.
func (s *DoctorService) Get(ctx context.Context, id string) (*models.Doctor, error) {
	return s.repo.FindByID(ctx, id)
}

// Create registers a new doctor. Names are normalized so schedule rows
// citing "Dr. Smith" and a profile named "SMITH" resolve to the same
// record.
func (s *DoctorService) Create(ctx context.Context, req dto.CreateDoctorRequest) (*models.Doctor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	doctor := &models.Doctor{
		Name:           models.NormalizeName(req.Name),
		Department:     strings.ToUpper(strings.TrimSpace(req.Department)),
		Specialization: req.Specialization,
		RegistrationNo: req.RegistrationNo,
		Active:         true,
	}
	if req.Active != nil {
		doctor.Active = *req.Active
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, doctor.Name)
	return doctor, nil
}

// Update modifies a profile.
func (s *DoctorService) Update(ctx context.Context, id string, req dto.UpdateDoctorRequest) (*models.Doctor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	doctor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		doctor.Name = models.NormalizeName(*req.Name)
	}
	if req.Department != nil {
		doctor.Department = strings.ToUpper(strings.TrimSpace(*req.Department))
	}
	if req.Specialization != nil {
		doctor.Specialization = req.Specialization
	}
	if req.RegistrationNo != nil {
		doctor.RegistrationNo = req.RegistrationNo
	}
	if req.Active != nil {
		doctor.Active = *req.Active
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, doctor.Name)
	return doctor, nil
}

// Delete removes a profile.
func (s *DoctorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, "")
	return nil
}

func (s *DoctorService) afterMutation(ctx context.Context, name string) {
	gen := int64(0)
	if s.roster != nil {
		gen = s.roster.Bump()
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "dashboard:*")
	}
	s.logger.Debug("doctor roster changed", zap.String("doctor", name), zap.Int64("generation", gen))
}
