package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
)

type appointmentRepository interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Appointment, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appt *models.Appointment) error
	UpdateVersioned(ctx context.Context, appt *models.Appointment, expectedVersion int64) error
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) error
	Delete(ctx context.Context, id string) error
}

// AppointmentService manages the day schedule: slot CRUD with optimistic
// save versions and lifecycle status transitions.
type AppointmentService struct {
	repo      appointmentRepository
	cache     *CacheService
	logger    *zap.Logger
	validator *validator.Validate
}

// NewAppointmentService wires the appointment workflows.
func NewAppointmentService(repo appointmentRepository, cache *CacheService, logger *zap.Logger) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{repo: repo, cache: cache, logger: logger, validator: validator.New()}
}

// List returns a filtered, paginated page of appointments.
func (s *AppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	return s.repo.List(ctx, filter)
}

// ListByDate returns a date's schedule in document order.
func (s *AppointmentService) ListByDate(ctx context.Context, date time.Time) ([]models.Appointment, error) {
	return s.repo.ListByDate(ctx, date)
}

// Get loads one appointment.
func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	return s.repo.FindByID(ctx, id)
}

// Create registers a new slot. Times are stored exactly as supplied; the
// engine tolerates unparseable values downstream.
func (s *AppointmentService) Create(ctx context.Context, req dto.CreateAppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	appt := &models.Appointment{
		Date:        date,
		PatientName: strings.TrimSpace(req.PatientName),
		DoctorName:  strings.TrimSpace(req.DoctorName),
		OPRoom:      strings.TrimSpace(req.OPRoom),
		StartTime:   strings.TrimSpace(req.StartTime),
		EndTime:     strings.TrimSpace(req.EndTime),
		Procedure:   strings.TrimSpace(req.Procedure),
		Status:      models.StatusPending,
		SaveVersion: 1,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	s.invalidateDay(ctx, date)
	return appt, nil
}

// Update applies a partial edit under optimistic concurrency. The caller
// must supply the save version it loaded; a stale version is rejected so
// a concurrent edit is never silently overwritten.
func (s *AppointmentService) Update(ctx context.Context, id string, req dto.UpdateAppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.SaveVersion != req.SaveVersion {
		return nil, appErrors.Clone(appErrors.ErrVersionConflict, "")
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	applyString(&appt.PatientName, req.PatientName)
	applyString(&appt.DoctorName, req.DoctorName)
	applyString(&appt.OPRoom, req.OPRoom)
	applyString(&appt.StartTime, req.StartTime)
	applyString(&appt.EndTime, req.EndTime)
	applyString(&appt.Procedure, req.Procedure)
	applyString(&appt.FirstAssistant, req.FirstAssistant)
	applyString(&appt.SecondAssistant, req.SecondAssistant)
	applyString(&appt.ThirdAssistant, req.ThirdAssistant)

	if err := s.repo.UpdateVersioned(ctx, appt, req.SaveVersion); err != nil {
		return nil, err
	}
	s.invalidateDay(ctx, appt.Date)
	return appt, nil
}

// UpdateStatus transitions the lifecycle status. Terminal statuses drop
// the slot out of availability conflicts and load accounting immediately.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id string, req dto.UpdateStatusRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	status := models.AppointmentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown appointment status")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.invalidateDay(ctx, appt.Date)
	s.logger.Info("appointment status changed",
		zap.String("appointment_id", id),
		zap.String("from", string(appt.Status)),
		zap.String("to", string(status)),
	)
	return s.repo.FindByID(ctx, id)
}

// Delete removes a slot from the schedule.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateDay(ctx, appt.Date)
	return nil
}

func (s *AppointmentService) invalidateDay(ctx context.Context, date time.Time) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, "dashboard:"+date.Format("2006-01-02")+":*")
}
