package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smilekraft/clinic-ops-api/internal/models"
)

type dashboardAppointmentRepository interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.Appointment, error)
}

type dashboardPunchRepository interface {
	MapByDate(ctx context.Context, date time.Time) (models.PunchMap, error)
}

type dashboardTimeBlockRepository interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.TimeBlock, error)
}

// DashboardBoard is the live status board: one row per rostered assistant
// plus the day's schedule summary.
type DashboardBoard struct {
	Date       string                   `json:"date"`
	Generation int64                    `json:"generation"`
	Assistants []models.AssistantStatus `json:"assistants"`
	Slots      int                      `json:"slots"`
	Unassigned int                      `json:"unassigned"`
}

// DashboardService renders the live status board. Boards are cached per
// minute and per roster generation, so a profile edit invalidates every
// cached board implicitly.
type DashboardService struct {
	appointments dashboardAppointmentRepository
	punches      dashboardPunchRepository
	blocks       dashboardTimeBlockRepository
	roster       *RosterService
	availability *AvailabilityService
	cache        *CacheService
	cacheTTL     time.Duration
	clock        func() time.Time
	logger       *zap.Logger
}

// NewDashboardService wires the status board.
func NewDashboardService(
	appointments dashboardAppointmentRepository,
	punches dashboardPunchRepository,
	blocks dashboardTimeBlockRepository,
	roster *RosterService,
	availability *AvailabilityService,
	cache *CacheService,
	cacheTTL time.Duration,
	clock func() time.Time,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if availability == nil {
		availability = NewAvailabilityService(logger)
	}
	if clock == nil {
		clock = time.Now
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &DashboardService{
		appointments: appointments,
		punches:      punches,
		blocks:       blocks,
		roster:       roster,
		availability: availability,
		cache:        cache,
		cacheTTL:     cacheTTL,
		clock:        clock,
		logger:       logger,
	}
}

// Board returns every assistant's live state for a date.
func (s *DashboardService) Board(ctx context.Context, date time.Time) (*DashboardBoard, error) {
	index, err := s.roster.Index(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	key := fmt.Sprintf("dashboard:%s:%d:%s", date.Format("2006-01-02"), index.Generation, now.Format("15:04"))
	if s.cache != nil {
		var cached DashboardBoard
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	schedule, err := s.appointments.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	punches, err := s.punches.MapByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	blocks, err := s.blocks.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	day := DaySnapshot{
		Date:      date,
		Schedule:  schedule,
		Punches:   punches,
		Blocks:    blocks,
		WeeklyOff: index.WeeklyOffSet(date),
	}

	board := &DashboardBoard{
		Date:       date.Format("2006-01-02"),
		Generation: index.Generation,
		Slots:      len(schedule),
	}
	for _, slot := range schedule {
		if !slot.Status.Terminal() && !slot.FullyAssigned() {
			board.Unassigned++
		}
	}
	for _, name := range index.AssistantNames {
		status := s.availability.StatusAt(name, now, day)
		status.Department = index.AssistantDepartment(name)
		board.Assistants = append(board.Assistants, status)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, board, s.cacheTTL)
	}
	return board, nil
}
