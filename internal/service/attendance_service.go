package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
	appErrors "github.com/smilekraft/clinic-ops-api/pkg/errors"
	"github.com/smilekraft/clinic-ops-api/pkg/timeutil"
)

type punchRepository interface {
	MapByDate(ctx context.Context, date time.Time) (models.PunchMap, error)
	PunchIn(ctx context.Context, assistantName string, date, at time.Time) error
	PunchOut(ctx context.Context, assistantName string, date, at time.Time) error
}

// AttendanceService records punch-in/out events. A punch-in is the gate
// for all availability: an assistant with no punch-in today is never
// allocatable regardless of schedule.
type AttendanceService struct {
	repo      punchRepository
	roster    *RosterService
	clock     func() time.Time
	logger    *zap.Logger
	validator *validator.Validate
}

// NewAttendanceService wires attendance workflows.
func NewAttendanceService(repo punchRepository, roster *RosterService, clock func() time.Time, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &AttendanceService{repo: repo, roster: roster, clock: clock, logger: logger, validator: validator.New()}
}

// PunchIn records an arrival. Repeated punch-ins keep the first time.
func (s *AttendanceService) PunchIn(ctx context.Context, req dto.PunchRequest) error {
	return s.punch(ctx, req, true)
}

// PunchOut records a departure, ending availability for the day.
func (s *AttendanceService) PunchOut(ctx context.Context, req dto.PunchRequest) error {
	return s.punch(ctx, req, false)
}

func (s *AttendanceService) punch(ctx context.Context, req dto.PunchRequest, in bool) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	at := s.clock()
	if req.Time != "" {
		clock, ok := timeutil.ParseClock(req.Time)
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, "unparseable punch time")
		}
		at = time.Date(date.Year(), date.Month(), date.Day(), clock.Hour, clock.Minute, 0, 0, date.Location())
	}

	name := models.NormalizeName(req.AssistantName)
	if in {
		err = s.repo.PunchIn(ctx, name, date, at)
	} else {
		err = s.repo.PunchOut(ctx, name, date, at)
	}
	if err != nil {
		return err
	}
	s.logger.Info("punch recorded",
		zap.String("assistant", name),
		zap.String("date", req.Date),
		zap.Bool("in", in),
	)
	return nil
}

// Board returns the attendance rows for every rostered assistant on a
// date, including those who never punched.
func (s *AttendanceService) Board(ctx context.Context, date time.Time) ([]models.PunchSummary, error) {
	index, err := s.roster.Index(ctx)
	if err != nil {
		return nil, err
	}
	punches, err := s.repo.MapByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	off := index.WeeklyOffSet(date)

	rows := make([]models.PunchSummary, 0, len(index.AssistantNames))
	for _, name := range index.AssistantNames {
		row := models.PunchSummary{AssistantName: name, Date: date, WeeklyOff: off[name]}
		if rec, ok := punches[name]; ok {
			row.PunchIn = rec.PunchIn
			row.PunchOut = rec.PunchOut
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].AssistantName < rows[j].AssistantName })
	return rows, nil
}
