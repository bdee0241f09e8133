package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilekraft/clinic-ops-api/internal/dto"
	"github.com/smilekraft/clinic-ops-api/internal/models"
)

type stubAssistantSource struct{ list []models.Assistant }

func (s *stubAssistantSource) ListActive(context.Context) ([]models.Assistant, error) {
	return s.list, nil
}

type stubDoctorSource struct{ list []models.Doctor }

func (s *stubDoctorSource) ListActive(context.Context) ([]models.Doctor, error) {
	return s.list, nil
}

type stubRuleSource struct{ rules models.RuleSet }

func (s *stubRuleSource) Load() models.RuleSet { return s.rules }

type memAppointmentStore struct {
	mu    sync.Mutex
	appts []*models.Appointment
}

func (m *memAppointmentStore) ListByDate(_ context.Context, date time.Time) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Appointment, 0, len(m.appts))
	for _, appt := range m.appts {
		if sameDate(appt.Date, date) {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (m *memAppointmentStore) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, appt := range m.appts {
		if appt.ID == id {
			copied := *appt
			return &copied, nil
		}
	}
	return nil, assert.AnError
}

func (m *memAppointmentStore) UpdateAssignments(_ context.Context, id string, assignment models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, appt := range m.appts {
		if appt.ID == id {
			appt.FirstAssistant = assignment.First
			appt.SecondAssistant = assignment.Second
			appt.ThirdAssistant = assignment.Third
			appt.SaveVersion++
			return nil
		}
	}
	return assert.AnError
}

type stubPunchSource struct{ punches models.PunchMap }

func (s *stubPunchSource) MapByDate(context.Context, time.Time) (models.PunchMap, error) {
	return s.punches, nil
}

type stubBlockSource struct{ blocks []models.TimeBlock }

func (s *stubBlockSource) ListByDate(context.Context, time.Time) ([]models.TimeBlock, error) {
	return s.blocks, nil
}

type engineFixture struct {
	store *memAppointmentStore
	svc   *AllocationService
}

type engineSetup struct {
	assistants []models.Assistant
	doctors    []models.Doctor
	rules      models.RuleSet
	appts      []*models.Appointment
	punches    models.PunchMap
	blocks     []models.TimeBlock
	policy     models.AllocationPolicy
	now        time.Time
}

func newEngine(t *testing.T, setup engineSetup) *engineFixture {
	t.Helper()
	if setup.now.IsZero() {
		setup.now = time.Date(testDay.Year(), testDay.Month(), testDay.Day(), 9, 0, 0, 0, time.UTC)
	}
	if setup.punches == nil {
		setup.punches = models.PunchMap{}
	}

	roster := NewRosterService(
		&stubAssistantSource{list: setup.assistants},
		&stubDoctorSource{list: setup.doctors},
		&stubRuleSource{rules: setup.rules},
		nil,
	)
	store := &memAppointmentStore{appts: setup.appts}
	svc := NewAllocationService(
		store,
		&stubPunchSource{punches: setup.punches},
		&stubBlockSource{blocks: setup.blocks},
		roster,
		nil,
		nil,
		AllocationServiceConfig{
			Policy: setup.policy,
			Clock:  func() time.Time { return setup.now },
		},
		nil,
	)
	return &engineFixture{store: store, svc: svc}
}

func deptAssistants(dept string, names ...string) []models.Assistant {
	out := make([]models.Assistant, 0, len(names))
	for _, name := range names {
		out = append(out, models.Assistant{ID: name, Name: name, Department: dept, Active: true})
	}
	return out
}

func endoRules(roles map[string]models.RoleRule) models.RuleSet {
	return models.RuleSet{
		Departments: map[string]models.DepartmentRules{
			"ENDO": {Roles: roles},
		},
	}
}

func slot(id, doctor, start, end string) *models.Appointment {
	return &models.Appointment{
		ID:          id,
		Date:        testDay,
		PatientName: "Patient " + id,
		DoctorName:  doctor,
		StartTime:   start,
		EndTime:     end,
		Status:      models.StatusPending,
		SaveVersion: 1,
	}
}

func TestAllocateDayEndToEnd(t *testing.T) {
	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "A", "B", "C"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules: endoRules(map[string]models.RoleRule{
			"FIRST":  {Default: []string{"B"}},
			"SECOND": {Default: []string{"C"}},
			"THIRD":  {},
		}),
		appts:   []*models.Appointment{slot("s1", "Dr. Smith", "10:00", "10:30")},
		punches: punchedIn("A", "B", "C"),
	})

	resp, err := fix.svc.AllocateDay(context.Background(), dto.AllocateDayRequest{Date: "2025-03-10", OnlyFillEmpty: true})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Changed)
	require.Len(t, resp.Appointments, 1)
	got := resp.Appointments[0]
	assert.Equal(t, "B", got.FirstAssistant)
	assert.Equal(t, "C", got.SecondAssistant)
	assert.Equal(t, "A", got.ThirdAssistant, "pool fallback takes the only remaining member")

	// Persisted the same result.
	stored, err := fix.store.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "B", stored.FirstAssistant)
	assert.Equal(t, "C", stored.SecondAssistant)
	assert.Equal(t, "A", stored.ThirdAssistant)
}

func TestAllocateDayPunchGate(t *testing.T) {
	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "JANE"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules: endoRules(map[string]models.RoleRule{
			"FIRST": {Default: []string{"JANE"}},
		}),
		appts: []*models.Appointment{slot("s1", "SMITH", "10:00", "10:30")},
		// JANE has no punch-in today.
	})

	resp, err := fix.svc.AllocateDay(context.Background(), dto.AllocateDayRequest{Date: "2025-03-10", OnlyFillEmpty: true})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Changed)
	assert.Empty(t, resp.Appointments[0].FirstAssistant, "a rule can never force in someone who is not punched in")
}

func TestAllocateDayOnlyFillEmptyIdempotent(t *testing.T) {
	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "A", "B", "C"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules:      endoRules(nil),
		appts: []*models.Appointment{
			slot("s1", "SMITH", "10:00", "10:30"),
			slot("s2", "SMITH", "11:00", "11:30"),
		},
		punches: punchedIn("A", "B", "C"),
	})

	first, err := fix.svc.AllocateDay(context.Background(), dto.AllocateDayRequest{Date: "2025-03-10", OnlyFillEmpty: true})
	require.NoError(t, err)
	assert.Greater(t, first.Changed, 0)

	second, err := fix.svc.AllocateDay(context.Background(), dto.AllocateDayRequest{Date: "2025-03-10", OnlyFillEmpty: true})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Changed)
}

func TestAllocateSlotRolesPairwiseDistinct(t *testing.T) {
	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "A", "B", "C"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules: endoRules(map[string]models.RoleRule{
			"FIRST":  {Default: []string{"A"}},
			"SECOND": {Default: []string{"A"}},
			"THIRD":  {Default: []string{"A"}},
		}),
		appts:   []*models.Appointment{slot("s1", "SMITH", "10:00", "10:30")},
		punches: punchedIn("A", "B", "C"),
	})

	resp, err := fix.svc.AllocateSlot(context.Background(), dto.AllocateSlotRequest{AppointmentID: "s1", OnlyFillEmpty: true})
	require.NoError(t, err)
	got := resp.Assignment
	assert.Equal(t, "A", got.First)
	assert.NotEmpty(t, got.Second)
	assert.NotEmpty(t, got.Third)
	assert.NotEqual(t, got.First, got.Second)
	assert.NotEqual(t, got.First, got.Third)
	assert.NotEqual(t, got.Second, got.Third)
}

func TestAllocateSlotLoadBalanceTieBreak(t *testing.T) {
	busy := []*models.Appointment{
		slot("b1", "SMITH", "07:00", "07:15"),
		slot("b2", "SMITH", "07:20", "07:35"),
		slot("b3", "SMITH", "07:40", "07:55"),
	}
	for _, b := range busy {
		b.FirstAssistant = "X"
	}
	target := slot("s1", "SMITH", "10:00", "10:30")
	target.SecondAssistant = "Z"
	target.ThirdAssistant = "W"

	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "X", "Y", "Z", "W"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules:      endoRules(nil),
		appts:      append(busy, target),
		punches:    punchedIn("X", "Y", "Z", "W"),
		policy:     models.AllocationPolicy{LoadBalance: true},
	})

	resp, err := fix.svc.AllocateSlot(context.Background(), dto.AllocateSlotRequest{AppointmentID: "s1", OnlyFillEmpty: true})
	require.NoError(t, err)
	assert.Equal(t, "Y", resp.Assignment.First, "fallback must prefer the zero-load candidate over the loaded one")
}

func TestAllocateSlotTerminalSlotsDoNotBlock(t *testing.T) {
	cancelled := slot("c1", "SMITH", "10:00", "10:30")
	cancelled.Status = models.StatusCancelled
	cancelled.FirstAssistant = "X"

	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "X"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules: endoRules(map[string]models.RoleRule{
			"FIRST": {Default: []string{"X"}},
		}),
		appts:   []*models.Appointment{cancelled, slot("s1", "SMITH", "10:00", "10:30")},
		punches: punchedIn("X"),
	})

	resp, err := fix.svc.AllocateSlot(context.Background(), dto.AllocateSlotRequest{AppointmentID: "s1", OnlyFillEmpty: true})
	require.NoError(t, err)
	assert.Equal(t, "X", resp.Assignment.First, "a cancelled overlapping slot must not make X busy")
}

func TestAllocateDayNoDoubleBookingAcrossOverlappingSlots(t *testing.T) {
	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "A", "B"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules: endoRules(map[string]models.RoleRule{
			"FIRST": {Default: []string{"A"}},
		}),
		appts: []*models.Appointment{
			slot("s1", "SMITH", "10:00", "10:30"),
			slot("s2", "SMITH", "10:15", "10:45"),
		},
		punches: punchedIn("A", "B"),
	})

	resp, err := fix.svc.AllocateDay(context.Background(), dto.AllocateDayRequest{Date: "2025-03-10", OnlyFillEmpty: true})
	require.NoError(t, err)
	first := resp.Appointments[0]
	assert.Equal(t, "A", first.FirstAssistant)
	assert.Equal(t, "B", first.SecondAssistant, "pool fallback fills the remaining role")

	// Both assistants are committed to the earlier overlapping slot, so
	// the second slot cannot claim either of them again.
	second := resp.Appointments[1]
	assert.Empty(t, second.FirstAssistant)
	assert.Empty(t, second.SecondAssistant)
	assert.Empty(t, second.ThirdAssistant)
}

func TestAllocateDayCrossDepartmentFallback(t *testing.T) {
	rules := models.RuleSet{
		Departments: map[string]models.DepartmentRules{
			"ENDO": {Roles: map[string]models.RoleRule{"FIRST": {Default: []string{"A"}}}},
		},
	}
	assistants := append(deptAssistants("ENDO", "A"), deptAssistants("ORTHO", "Z")...)
	doctors := []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}}

	// A never punched in; Z (other department) is available.
	t.Run("disabled leaves the slot blank", func(t *testing.T) {
		fix := newEngine(t, engineSetup{
			assistants: assistants,
			doctors:    doctors,
			rules:      rules,
			appts:      []*models.Appointment{slot("s1", "SMITH", "10:00", "10:30")},
			punches:    punchedIn("Z"),
		})
		resp, err := fix.svc.AllocateDay(context.Background(), dto.AllocateDayRequest{Date: "2025-03-10", OnlyFillEmpty: true})
		require.NoError(t, err)
		assert.Empty(t, resp.Appointments[0].FirstAssistant)
		assert.Empty(t, resp.Appointments[0].SecondAssistant)
		assert.Empty(t, resp.Appointments[0].ThirdAssistant)
	})

	t.Run("enabled pulls from the global pool", func(t *testing.T) {
		fix := newEngine(t, engineSetup{
			assistants: assistants,
			doctors:    doctors,
			rules:      rules,
			appts:      []*models.Appointment{slot("s1", "SMITH", "10:00", "10:30")},
			punches:    punchedIn("Z"),
			policy:     models.AllocationPolicy{CrossDepartment: true},
		})
		resp, err := fix.svc.AllocateDay(context.Background(), dto.AllocateDayRequest{Date: "2025-03-10", OnlyFillEmpty: true})
		require.NoError(t, err)
		assert.Equal(t, "Z", resp.Appointments[0].FirstAssistant)
	})
}

func TestAllocateDaySkipsUnusableSlots(t *testing.T) {
	noDoctor := slot("s1", "", "10:00", "10:30")
	badWindow := slot("s2", "SMITH", "whenever", "10:30")

	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "A"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules:      endoRules(nil),
		appts:      []*models.Appointment{noDoctor, badWindow},
		punches:    punchedIn("A"),
	})

	resp, err := fix.svc.AllocateDay(context.Background(), dto.AllocateDayRequest{Date: "2025-03-10", OnlyFillEmpty: true})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Changed)
	for _, appt := range resp.Appointments {
		assert.Empty(t, appt.FirstAssistant)
	}
}

func TestAllocateDayFullRunLeavesUnusableSlotsAlone(t *testing.T) {
	badWindow := slot("s1", "SMITH", "whenever", "10:30")
	badWindow.FirstAssistant = "A"
	badWindow.SecondAssistant = "B"
	noDoctor := slot("s2", "", "10:00", "10:30")
	noDoctor.FirstAssistant = "C"

	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "A", "B", "C"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules:      endoRules(nil),
		appts:      []*models.Appointment{badWindow, noDoctor},
		punches:    punchedIn("A", "B", "C"),
	})

	resp, err := fix.svc.AllocateDay(context.Background(), dto.AllocateDayRequest{Date: "2025-03-10", OnlyFillEmpty: false})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Changed)

	stored, err := fix.store.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "A", stored.FirstAssistant)
	assert.Equal(t, "B", stored.SecondAssistant)
	assert.Equal(t, int64(1), stored.SaveVersion, "a skipped slot is never written")

	stored, err = fix.store.FindByID(context.Background(), "s2")
	require.NoError(t, err)
	assert.Equal(t, "C", stored.FirstAssistant)

	// The single-slot path takes the same guard.
	single, err := fix.svc.AllocateSlot(context.Background(), dto.AllocateSlotRequest{AppointmentID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "A", single.Assignment.First)
	assert.Equal(t, "B", single.Assignment.Second)
}

func TestAllocateDayFullRunNeverBlanksFilledRoles(t *testing.T) {
	s1 := slot("s1", "SMITH", "10:00", "10:30")
	s1.SecondAssistant = "B"

	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "A", "B"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules:      endoRules(nil),
		appts:      []*models.Appointment{s1},
		// B never punched in, so a full run cannot re-propose them.
		punches: punchedIn("A"),
	})

	resp, err := fix.svc.AllocateDay(context.Background(), dto.AllocateDayRequest{Date: "2025-03-10", OnlyFillEmpty: false})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Changed)

	got := resp.Appointments[0]
	assert.Equal(t, "A", got.FirstAssistant)
	assert.Equal(t, "B", got.SecondAssistant, "an unfillable role keeps its stored name")
	assert.Empty(t, got.ThirdAssistant)

	stored, err := fix.store.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "B", stored.SecondAssistant)
}

func TestAllocateSlotPreservesExistingWhenOnlyFillEmpty(t *testing.T) {
	target := slot("s1", "SMITH", "10:00", "10:30")
	target.FirstAssistant = "B"

	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "A", "B"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules: endoRules(map[string]models.RoleRule{
			"FIRST": {Default: []string{"A"}},
		}),
		appts:   []*models.Appointment{target},
		punches: punchedIn("A", "B"),
	})

	resp, err := fix.svc.AllocateSlot(context.Background(), dto.AllocateSlotRequest{AppointmentID: "s1", OnlyFillEmpty: true})
	require.NoError(t, err)
	assert.Equal(t, "B", resp.Assignment.First, "an existing assignment is never overwritten in fill-empty mode")
}

func TestCheckAvailabilityEndpointShape(t *testing.T) {
	fix := newEngine(t, engineSetup{
		assistants: deptAssistants("ENDO", "A"),
		doctors:    []models.Doctor{{ID: "d1", Name: "SMITH", Department: "ENDO", Active: true}},
		rules:      endoRules(nil),
		punches:    punchedIn("A"),
	})

	avail, err := fix.svc.CheckAvailability(context.Background(), dto.AvailabilityQuery{
		AssistantName: "A",
		Date:          "2025-03-10",
		StartTime:     "10:00",
		EndTime:       "10:30",
	})
	require.NoError(t, err)
	assert.True(t, avail.Available)
}
