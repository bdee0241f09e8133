package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smilekraft/clinic-ops-api/internal/models"
	"github.com/smilekraft/clinic-ops-api/pkg/timeutil"
)

// DaySnapshot bundles everything availability decisions need for one date:
// the appointment schedule, attendance punches, ad hoc time blocks and the
// weekly-off set derived from the roster index.
type DaySnapshot struct {
	Date      time.Time
	Schedule  []models.Appointment
	Punches   models.PunchMap
	Blocks    []models.TimeBlock
	WeeklyOff map[string]bool
}

// AvailabilityService evaluates assistant availability against a day
// snapshot. All methods are pure over their inputs.
type AvailabilityService struct {
	logger *zap.Logger
}

// NewAvailabilityService creates the availability evaluator.
func NewAvailabilityService(logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{logger: logger}
}

// CheckWindow decides whether an assistant can take a slot spanning the
// given window. Checks run punch-in state, then time blocks, then booked
// appointments; the first failing check supplies the reason. Windows whose
// endpoints cannot be parsed never produce a conflict.
func (s *AvailabilityService) CheckWindow(assistant string, start, end interface{}, excludeSlotID string, day DaySnapshot) models.Availability {
	name := models.NormalizeName(assistant)
	if name == "" {
		return models.Availability{Available: false, Reason: "no assistant named"}
	}

	rec, punched := day.Punches[name]
	if !punched || rec.PunchIn == nil {
		if day.WeeklyOff[name] {
			return models.Availability{Available: false, Reason: fmt.Sprintf("weekly off (%s)", timeutil.DayName(timeutil.WeekdayIndex(day.Date)))}
		}
		return models.Availability{Available: false, Reason: "not punched in"}
	}
	if rec.PunchOut != nil {
		return models.Availability{Available: false, Reason: fmt.Sprintf("punched out at %s", timeutil.Format12Hour(timeutil.FromTime(*rec.PunchOut)))}
	}

	startMin, okStart := timeutil.ToMinutes(start)
	endMin, okEnd := timeutil.ToMinutes(end)
	if !okStart || !okEnd {
		// The requested window is unparseable; without a window there is
		// nothing to conflict with.
		return models.Availability{Available: true}
	}
	startMin, endMin = timeutil.NormalizeWindow(startMin, endMin)

	for _, block := range day.Blocks {
		if models.NormalizeName(block.AssistantName) != name || !sameDate(block.Date, day.Date) {
			continue
		}
		bStart, okB := timeutil.ToMinutes(block.StartTime)
		bEnd, okE := timeutil.ToMinutes(block.EndTime)
		if !okB || !okE {
			continue
		}
		bStart, bEnd = timeutil.NormalizeWindow(bStart, bEnd)
		if timeutil.Overlaps(startMin, endMin, bStart, bEnd) {
			reason := block.Reason
			if reason == "" {
				reason = "blocked"
			}
			return models.Availability{Available: false, Reason: reason}
		}
	}

	for _, slot := range day.Schedule {
		if slot.ID == excludeSlotID || slot.Status.Terminal() {
			continue
		}
		if !assignedTo(slot, name) {
			continue
		}
		aStart, okS := timeutil.ToMinutes(slot.StartTime)
		aEnd, okE := timeutil.ToMinutes(slot.EndTime)
		if !okS || !okE {
			continue
		}
		aStart, aEnd = timeutil.NormalizeWindow(aStart, aEnd)
		if timeutil.Overlaps(startMin, endMin, aStart, aEnd) {
			return models.Availability{
				Available: false,
				Reason: fmt.Sprintf("booked for %s (%s - %s)",
					slot.PatientName,
					timeutil.FormatMinutes(aStart),
					timeutil.FormatMinutes(aEnd%timeutil.MinutesPerDay)),
			}
		}
	}

	return models.Availability{Available: true}
}

// StatusAt reports an assistant's live state at the given instant.
// Attendance and blocks yield BLOCKED, active appointments yield BUSY,
// everything else is FREE.
func (s *AvailabilityService) StatusAt(assistant string, at time.Time, day DaySnapshot) models.AssistantStatus {
	name := models.NormalizeName(assistant)
	status := models.AssistantStatus{Name: name, State: models.StateFree}

	rec, punched := day.Punches[name]
	if !punched || rec.PunchIn == nil {
		status.State = models.StateBlocked
		if day.WeeklyOff[name] {
			status.Reason = fmt.Sprintf("weekly off (%s)", timeutil.DayName(timeutil.WeekdayIndex(day.Date)))
		} else {
			status.Reason = "not punched in"
		}
		return status
	}
	if rec.PunchOut != nil {
		status.State = models.StateBlocked
		status.Reason = fmt.Sprintf("punched out at %s", timeutil.Format12Hour(timeutil.FromTime(*rec.PunchOut)))
		return status
	}

	nowMin := timeutil.FromTime(at).Minutes()

	for _, block := range day.Blocks {
		if models.NormalizeName(block.AssistantName) != name || !sameDate(block.Date, day.Date) {
			continue
		}
		bStart, okS := timeutil.ToMinutes(block.StartTime)
		bEnd, okE := timeutil.ToMinutes(block.EndTime)
		if !okS || !okE {
			continue
		}
		bStart, bEnd = timeutil.NormalizeWindow(bStart, bEnd)
		if timeutil.Contains(bStart, bEnd, nowMin) {
			status.State = models.StateBlocked
			status.Reason = block.Reason
			if status.Reason == "" {
				status.Reason = "blocked"
			}
			return status
		}
	}

	for _, slot := range day.Schedule {
		if slot.Status.Terminal() || !assignedTo(slot, name) {
			continue
		}
		if slot.Status == models.StatusOngoing {
			status.State = models.StateBusy
			status.Reason = fmt.Sprintf("with %s", slot.PatientName)
			return status
		}
		aStart, okS := timeutil.ToMinutes(slot.StartTime)
		aEnd, okE := timeutil.ToMinutes(slot.EndTime)
		if !okS || !okE {
			continue
		}
		aStart, aEnd = timeutil.NormalizeWindow(aStart, aEnd)
		if timeutil.Contains(aStart, aEnd, nowMin) {
			status.State = models.StateBusy
			status.Reason = fmt.Sprintf("with %s", slot.PatientName)
			return status
		}
	}

	return status
}

// FreeForNewWork reports whether an assistant could be pulled into a slot
// starting now: not mid-procedure and not inside any booked window.
func (s *AvailabilityService) FreeForNewWork(assistant string, at time.Time, excludeSlotID string, day DaySnapshot) bool {
	name := models.NormalizeName(assistant)
	nowMin := timeutil.FromTime(at).Minutes()

	for _, slot := range day.Schedule {
		if slot.ID == excludeSlotID || slot.Status.Terminal() || !assignedTo(slot, name) {
			continue
		}
		if slot.Status == models.StatusOngoing {
			return false
		}
		aStart, okS := timeutil.ToMinutes(slot.StartTime)
		aEnd, okE := timeutil.ToMinutes(slot.EndTime)
		if !okS || !okE {
			continue
		}
		aStart, aEnd = timeutil.NormalizeWindow(aStart, aEnd)
		if timeutil.Contains(aStart, aEnd, nowMin) {
			return false
		}
	}
	return true
}

func assignedTo(slot models.Appointment, name string) bool {
	for _, assigned := range slot.Assistants() {
		if models.NormalizeName(assigned) == name {
			return true
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
