package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/smilekraft/clinic-ops-api/internal/models"
	"github.com/smilekraft/clinic-ops-api/pkg/timeutil"
)

type assistantRosterSource interface {
	ListActive(ctx context.Context) ([]models.Assistant, error)
}

type doctorRosterSource interface {
	ListActive(ctx context.Context) ([]models.Doctor, error)
}

type ruleSetSource interface {
	Load() models.RuleSet
}

// RosterIndex is the derived lookup structure every allocation decision
// consults. It is immutable once built and tagged with the generation it
// was built from; a stale generation is never served.
type RosterIndex struct {
	Generation int64 `json:"generation"`

	Assistants []models.Assistant `json:"assistants"`
	Doctors    []models.Doctor    `json:"doctors"`

	// AssistantNames preserves roster order; entries are normalized.
	AssistantNames []string `json:"assistant_names"`

	AssistantDepartments map[string]string   `json:"assistant_departments"`
	DoctorDepartments    map[string]string   `json:"doctor_departments"`
	DepartmentAssistants map[string][]string `json:"department_assistants"`

	// WeeklyOff maps weekday index (0=Monday..6=Sunday) to the names off
	// that day.
	WeeklyOff map[int][]string `json:"weekly_off"`

	Rules models.RuleSet `json:"rules"`
}

// AssistantDepartment resolves an assistant's department, defaulting to
// SHARED for unknown names.
func (idx *RosterIndex) AssistantDepartment(name string) string {
	if dept, ok := idx.AssistantDepartments[models.NormalizeName(name)]; ok {
		return dept
	}
	return models.SharedDepartment
}

// DoctorDepartment resolves a doctor's department, empty when unknown.
func (idx *RosterIndex) DoctorDepartment(name string) string {
	return idx.DoctorDepartments[models.NormalizeName(name)]
}

// WeeklyOffSet returns the set of names off on the given date.
func (idx *RosterIndex) WeeklyOffSet(date time.Time) map[string]bool {
	names := idx.WeeklyOff[timeutil.WeekdayIndex(date)]
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// RosterService owns the profile/department index and its generation
// counter. Profile edits bump the generation; the next read rebuilds the
// index from source instead of serving stale derived data.
type RosterService struct {
	assistants assistantRosterSource
	doctors    doctorRosterSource
	rules      ruleSetSource
	logger     *zap.Logger

	generation atomic.Int64

	mu      sync.Mutex
	current *RosterIndex
}

// NewRosterService wires the roster index dependencies.
func NewRosterService(assistants assistantRosterSource, doctors doctorRosterSource, rules ruleSetSource, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RosterService{assistants: assistants, doctors: doctors, rules: rules, logger: logger}
	s.generation.Store(1)
	return s
}

// Generation returns the current cache generation.
func (s *RosterService) Generation() int64 {
	return s.generation.Load()
}

// Bump invalidates the derived index. Called whenever profiles or the
// rules document change.
func (s *RosterService) Bump() int64 {
	return s.generation.Add(1)
}

// Index returns the derived lookup structure for the current generation,
// rebuilding it when the generation moved.
func (s *RosterService) Index(ctx context.Context) (*RosterIndex, error) {
	gen := s.generation.Load()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Generation == gen {
		return s.current, nil
	}

	idx, err := s.build(ctx, gen)
	if err != nil {
		return nil, err
	}
	s.current = idx
	return idx, nil
}

func (s *RosterService) build(ctx context.Context, gen int64) (*RosterIndex, error) {
	idx := &RosterIndex{
		Generation:           gen,
		AssistantDepartments: make(map[string]string),
		DoctorDepartments:    make(map[string]string),
		DepartmentAssistants: make(map[string][]string),
		WeeklyOff:            make(map[int][]string),
	}

	if s.rules != nil {
		idx.Rules = s.rules.Load()
	}

	assistants, err := s.assistants.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	doctors, err := s.doctors.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	idx.Assistants = assistants
	idx.Doctors = doctors

	for _, assistant := range assistants {
		name := models.NormalizeName(assistant.Name)
		if name == "" {
			continue
		}
		idx.AssistantNames = append(idx.AssistantNames, name)

		dept := strings.ToUpper(strings.TrimSpace(assistant.Department))
		if dept == "" {
			dept = s.configuredDepartment(idx.Rules, name, false)
		}
		if dept == "" {
			dept = models.SharedDepartment
		}
		idx.AssistantDepartments[name] = dept
		idx.DepartmentAssistants[dept] = append(idx.DepartmentAssistants[dept], name)

		for _, day := range assistant.WeeklyOffDays() {
			if day >= 0 && day <= 6 {
				idx.WeeklyOff[day] = append(idx.WeeklyOff[day], name)
			}
		}
	}

	for _, doctor := range doctors {
		name := models.NormalizeName(doctor.Name)
		if name == "" {
			continue
		}
		dept := strings.ToUpper(strings.TrimSpace(doctor.Department))
		if dept == "" {
			dept = s.configuredDepartment(idx.Rules, name, true)
		}
		idx.DoctorDepartments[name] = dept
	}

	s.logger.Debug("roster index rebuilt",
		zap.Int64("generation", gen),
		zap.Int("assistants", len(idx.AssistantNames)),
		zap.Int("doctors", len(doctors)),
		zap.Int("departments", len(idx.DepartmentAssistants)),
	)
	return idx, nil
}

// configuredDepartment searches the declarative rules document for a
// roster entry naming the profile.
func (s *RosterService) configuredDepartment(rules models.RuleSet, name string, doctor bool) string {
	for dept, entry := range rules.Departments {
		roster := entry.Assistants
		if doctor {
			roster = entry.Doctors
		}
		for _, member := range roster {
			if models.NormalizeName(member) == name {
				return dept
			}
		}
	}
	return ""
}
