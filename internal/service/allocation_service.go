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

type allocationAppointmentRepository interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.Appointment, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	UpdateAssignments(ctx context.Context, id string, assignment models.Assignment) error
}

type allocationPunchRepository interface {
	MapByDate(ctx context.Context, date time.Time) (models.PunchMap, error)
}

type allocationTimeBlockRepository interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.TimeBlock, error)
}

type allocationMetrics interface {
	RecordAllocationRun(scope string, changed int)
	RecordRoleFill(role models.Role, source string)
}

// AllocationServiceConfig tunes the engine. Policy values act as defaults
// and are overridden by the rules document's policy block when it sets them.
type AllocationServiceConfig struct {
	Policy models.AllocationPolicy
	Clock  func() time.Time
}

// AllocationService is the auto-assignment engine. Given the day's
// schedule, punches, blocks and the roster index it fills the three
// assistant roles per slot under the department rules.
type AllocationService struct {
	appointments allocationAppointmentRepository
	punches      allocationPunchRepository
	blocks       allocationTimeBlockRepository
	roster       *RosterService
	availability *AvailabilityService
	metrics      allocationMetrics
	policy       models.AllocationPolicy
	clock        func() time.Time
	logger       *zap.Logger
	validator    *validator.Validate
}

// NewAllocationService wires the allocation engine.
func NewAllocationService(
	appointments allocationAppointmentRepository,
	punches allocationPunchRepository,
	blocks allocationTimeBlockRepository,
	roster *RosterService,
	availability *AvailabilityService,
	metrics allocationMetrics,
	cfg AllocationServiceConfig,
	logger *zap.Logger,
) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if availability == nil {
		availability = NewAvailabilityService(logger)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AllocationService{
		appointments: appointments,
		punches:      punches,
		blocks:       blocks,
		roster:       roster,
		availability: availability,
		metrics:      metrics,
		policy:       cfg.Policy,
		clock:        clock,
		logger:       logger,
		validator:    validator.New(),
	}
}

// AllocateSlot fills the roles of a single appointment and persists any
// change. With onlyFillEmpty the existing assignments are kept and only
// blank roles are considered.
func (s *AllocationService) AllocateSlot(ctx context.Context, req dto.AllocateSlotRequest) (*dto.AllocateSlotResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	slot, err := s.appointments.FindByID(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	env, err := s.loadDay(ctx, slot.Date)
	if err != nil {
		return nil, err
	}

	current := models.Assignment{
		First:  models.NormalizeName(slot.FirstAssistant),
		Second: models.NormalizeName(slot.SecondAssistant),
		Third:  models.NormalizeName(slot.ThirdAssistant),
	}
	result := current
	if slotUsable(*slot) {
		proposed := s.allocateForSlot(slotInput{
			Slot:          *slot,
			Current:       current,
			OnlyFillEmpty: req.OnlyFillEmpty,
		}, env)
		result = mergeAssignments(current, proposed)
	}

	if result != current {
		if err := s.appointments.UpdateAssignments(ctx, slot.ID, result); err != nil {
			return nil, err
		}
	}
	if s.metrics != nil {
		s.metrics.RecordAllocationRun("slot", diffCount(current, result))
	}

	return &dto.AllocateSlotResponse{AppointmentID: slot.ID, Assignment: result}, nil
}

// AllocateDay runs the engine over every slot of a date in document order
// and persists the slots whose assignments changed.
func (s *AllocationService) AllocateDay(ctx context.Context, req dto.AllocateDayRequest) (*dto.AllocateDayResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	env, err := s.loadDay(ctx, date)
	if err != nil {
		return nil, err
	}

	schedule, changed := s.allocateAll(env, req.OnlyFillEmpty)

	for _, slot := range schedule {
		if !slot.dirty {
			continue
		}
		if err := s.appointments.UpdateAssignments(ctx, slot.appt.ID, slot.result); err != nil {
			return nil, err
		}
	}
	if s.metrics != nil {
		s.metrics.RecordAllocationRun("day", changed)
	}
	s.logger.Info("day allocation complete",
		zap.String("date", req.Date),
		zap.Int("slots", len(schedule)),
		zap.Int("changed", changed),
	)

	out := make([]models.Appointment, 0, len(schedule))
	for _, slot := range schedule {
		appt := slot.appt
		appt.FirstAssistant = slot.result.First
		appt.SecondAssistant = slot.result.Second
		appt.ThirdAssistant = slot.result.Third
		out = append(out, appt)
	}
	return &dto.AllocateDayResponse{Date: req.Date, Changed: changed, Appointments: out}, nil
}

// CheckAvailability answers a single assistant/window probe.
func (s *AllocationService) CheckAvailability(ctx context.Context, q dto.AvailabilityQuery) (*models.Availability, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	date, err := time.Parse("2006-01-02", q.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	env, err := s.loadDay(ctx, date)
	if err != nil {
		return nil, err
	}
	avail := s.availability.CheckWindow(q.AssistantName, q.StartTime, q.EndTime, q.ExcludeSlotID, env.day)
	return &avail, nil
}

// dayEnv is the full read-only input set for one allocation run.
type dayEnv struct {
	day    DaySnapshot
	index  *RosterIndex
	policy models.AllocationPolicy
}

func (s *AllocationService) loadDay(ctx context.Context, date time.Time) (dayEnv, error) {
	index, err := s.roster.Index(ctx)
	if err != nil {
		return dayEnv{}, err
	}
	schedule, err := s.appointments.ListByDate(ctx, date)
	if err != nil {
		return dayEnv{}, err
	}
	punches, err := s.punches.MapByDate(ctx, date)
	if err != nil {
		return dayEnv{}, err
	}
	blocks, err := s.blocks.ListByDate(ctx, date)
	if err != nil {
		return dayEnv{}, err
	}
	return dayEnv{
		day: DaySnapshot{
			Date:      date,
			Schedule:  schedule,
			Punches:   punches,
			Blocks:    blocks,
			WeeklyOff: index.WeeklyOffSet(date),
		},
		index:  index,
		policy: s.effectivePolicy(index.Rules),
	}, nil
}

// effectivePolicy layers the rules document's policy block over the
// configured defaults.
func (s *AllocationService) effectivePolicy(rules models.RuleSet) models.AllocationPolicy {
	policy := s.policy
	if rules.Policy.CrossDepartment {
		policy.CrossDepartment = true
	}
	if rules.Policy.LoadBalance {
		policy.LoadBalance = true
	}
	if rules.Policy.UseRoleFlags {
		policy.UseRoleFlags = true
	}
	return policy
}

type slotInput struct {
	Slot          models.Appointment
	Current       models.Assignment
	OnlyFillEmpty bool
}

type allocatedSlot struct {
	appt   models.Appointment
	result models.Assignment
	dirty  bool
}

// allocateAll walks the schedule in document order. Each slot sees the
// assignments already made for earlier slots through the shared schedule
// copy, so the engine never double-books within the run.
func (s *AllocationService) allocateAll(env dayEnv, onlyFillEmpty bool) ([]allocatedSlot, int) {
	out := make([]allocatedSlot, 0, len(env.day.Schedule))
	changed := 0

	for i := range env.day.Schedule {
		slot := env.day.Schedule[i]
		current := models.Assignment{
			First:  models.NormalizeName(slot.FirstAssistant),
			Second: models.NormalizeName(slot.SecondAssistant),
			Third:  models.NormalizeName(slot.ThirdAssistant),
		}

		// A slot the engine cannot reason about is left exactly as stored.
		if !slotUsable(slot) || (onlyFillEmpty && slot.FullyAssigned()) {
			out = append(out, allocatedSlot{appt: slot, result: current})
			continue
		}

		proposed := s.allocateForSlot(slotInput{Slot: slot, Current: current, OnlyFillEmpty: onlyFillEmpty}, env)
		result := mergeAssignments(current, proposed)

		delta := diffCount(current, result)
		changed += delta
		out = append(out, allocatedSlot{appt: slot, result: result, dirty: delta > 0})

		// Later slots must see this slot's new assignments when checking
		// window conflicts and load.
		env.day.Schedule[i].FirstAssistant = result.First
		env.day.Schedule[i].SecondAssistant = result.Second
		env.day.Schedule[i].ThirdAssistant = result.Third
	}
	return out, changed
}

// slotUsable reports whether the engine can reason about a slot at all: it
// needs a doctor and a parseable window.
func slotUsable(slot models.Appointment) bool {
	if models.NormalizeName(slot.DoctorName) == "" {
		return false
	}
	_, okStart := timeutil.ParseClock(slot.StartTime)
	_, okEnd := timeutil.ParseClock(slot.EndTime)
	return okStart && okEnd
}

// mergeAssignments keeps the stored name on any role the run left blank. A
// full run proposes replacements, never erasures: only a non-blank pick may
// displace what a slot already carries. A kept name the run moved to
// another role is not duplicated.
func mergeAssignments(current, proposed models.Assignment) models.Assignment {
	merged := proposed
	for _, role := range models.Roles() {
		if merged.Get(role) != "" {
			continue
		}
		keep := current.Get(role)
		if keep == "" || merged.Used(keep) {
			continue
		}
		merged.Set(role, keep)
	}
	return merged
}

// allocateForSlot fills the three roles of one slot. It is pure over env:
// persistence belongs to the callers.
func (s *AllocationService) allocateForSlot(in slotInput, env dayEnv) models.Assignment {
	result := models.Assignment{}
	if in.OnlyFillEmpty {
		result = in.Current
	}

	doctor := models.NormalizeName(in.Slot.DoctorName)
	if doctor == "" {
		return result
	}
	startClock, okStart := timeutil.ParseClock(in.Slot.StartTime)
	if _, okEnd := timeutil.ParseClock(in.Slot.EndTime); !okStart || !okEnd {
		// No usable window means no availability judgement is possible;
		// leave the slot untouched rather than guessing.
		return result
	}

	department := env.index.DoctorDepartment(doctor)
	deptPool := s.availablePool(env.index.DepartmentAssistants[department], in.Slot, env)
	var globalPool []string
	if env.policy.CrossDepartment {
		globalPool = s.availablePool(env.index.AssistantNames, in.Slot, env)
	}

	loads := AssignmentLoads(env.day.Schedule, in.Slot.ID)
	hour := startClock.HourFraction()

	for _, role := range models.Roles() {
		if in.OnlyFillEmpty && result.Get(role) != "" {
			continue
		}

		rule := env.index.Rules.RuleFor(department, string(role))
		candidates := ResolveCandidates(role, rule, doctor, hour, result.First)

		pick, source := s.pickForRole(candidates, deptPool, result, loads, env.policy.LoadBalance)
		if pick == "" && env.policy.CrossDepartment {
			pick, source = s.pickForRole(candidates, globalPool, result, loads, env.policy.LoadBalance)
			if pick != "" {
				source = "cross-department"
			}
		}
		if pick == "" {
			continue
		}

		result.Set(role, pick)
		loads[pick]++
		if s.metrics != nil {
			s.metrics.RecordRoleFill(role, source)
		}
	}

	return result
}

// pickForRole selects one assistant: the first rule candidate present in
// the pool, else a pool fallback by lowest load (or pool order when load
// balancing is off). Names already used on this slot are never reused.
func (s *AllocationService) pickForRole(candidates, pool []string, taken models.Assignment, loads map[string]int, loadBalance bool) (string, string) {
	inPool := make(map[string]bool, len(pool))
	for _, name := range pool {
		inPool[name] = true
	}

	for _, candidate := range candidates {
		name := models.NormalizeName(candidate)
		if name == "" || taken.Used(name) || !inPool[name] {
			continue
		}
		return name, "rule"
	}

	best := ""
	for _, name := range pool {
		if taken.Used(name) {
			continue
		}
		if best == "" {
			best = name
			if !loadBalance {
				break
			}
			continue
		}
		if loadBalance && loads[name] < loads[best] {
			best = name
		}
	}
	if best == "" {
		return "", ""
	}
	return best, "fallback"
}

// availablePool filters a roster to assistants who are free right now and
// clear for the slot's window.
func (s *AllocationService) availablePool(roster []string, slot models.Appointment, env dayEnv) []string {
	now := s.clock()
	pool := make([]string, 0, len(roster))
	for _, name := range roster {
		if !s.availability.FreeForNewWork(name, now, slot.ID, env.day) {
			continue
		}
		if avail := s.availability.CheckWindow(name, slot.StartTime, slot.EndTime, slot.ID, env.day); !avail.Available {
			continue
		}
		pool = append(pool, name)
	}
	return pool
}

func diffCount(before, after models.Assignment) int {
	count := 0
	for _, role := range models.Roles() {
		if before.Get(role) != after.Get(role) {
			count++
		}
	}
	return count
}
