package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilekraft/clinic-ops-api/internal/models"
)

var testDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) // a Monday

func punchedIn(names ...string) models.PunchMap {
	m := models.PunchMap{}
	for _, name := range names {
		in := time.Date(testDay.Year(), testDay.Month(), testDay.Day(), 8, 0, 0, 0, time.UTC)
		m[name] = models.PunchRecord{AssistantName: name, Date: testDay, PunchIn: &in}
	}
	return m
}

func TestCheckWindowPunchGate(t *testing.T) {
	svc := NewAvailabilityService(nil)

	day := DaySnapshot{Date: testDay, Punches: models.PunchMap{}}
	avail := svc.CheckWindow("JANE", "10:00", "10:30", "", day)
	require.False(t, avail.Available)
	assert.Equal(t, "not punched in", avail.Reason)

	day.WeeklyOff = map[string]bool{"JANE": true}
	avail = svc.CheckWindow("JANE", "10:00", "10:30", "", day)
	require.False(t, avail.Available)
	assert.Equal(t, "weekly off (Monday)", avail.Reason)
}

func TestCheckWindowPunchedOut(t *testing.T) {
	svc := NewAvailabilityService(nil)

	punches := punchedIn("JANE")
	out := time.Date(testDay.Year(), testDay.Month(), testDay.Day(), 14, 30, 0, 0, time.UTC)
	rec := punches["JANE"]
	rec.PunchOut = &out
	punches["JANE"] = rec

	avail := svc.CheckWindow("JANE", "15:00", "15:30", "", DaySnapshot{Date: testDay, Punches: punches})
	require.False(t, avail.Available)
	assert.Equal(t, "punched out at 2:30 PM", avail.Reason)
}

func TestCheckWindowTimeBlock(t *testing.T) {
	svc := NewAvailabilityService(nil)

	day := DaySnapshot{
		Date:    testDay,
		Punches: punchedIn("JANE"),
		Blocks: []models.TimeBlock{
			{AssistantName: "JANE", Date: testDay, Reason: "lab work", StartTime: "10:00", EndTime: "11:00"},
		},
	}

	avail := svc.CheckWindow("JANE", "10:30", "11:30", "", day)
	require.False(t, avail.Available)
	assert.Equal(t, "lab work", avail.Reason)

	avail = svc.CheckWindow("JANE", "11:00", "11:30", "", day)
	assert.True(t, avail.Available, "half-open block must not conflict at its end boundary")
}

func TestCheckWindowBookedConflict(t *testing.T) {
	svc := NewAvailabilityService(nil)

	day := DaySnapshot{
		Date:    testDay,
		Punches: punchedIn("JANE"),
		Schedule: []models.Appointment{
			{ID: "s1", PatientName: "Rao", StartTime: "10:00", EndTime: "10:30", FirstAssistant: "JANE", Status: models.StatusPending},
		},
	}

	avail := svc.CheckWindow("JANE", "10:15", "10:45", "", day)
	require.False(t, avail.Available)
	assert.Equal(t, "booked for Rao (10:00 AM - 10:30 AM)", avail.Reason)

	// The slot under (re)allocation never conflicts with itself.
	avail = svc.CheckWindow("JANE", "10:15", "10:45", "s1", day)
	assert.True(t, avail.Available)
}

func TestCheckWindowTerminalStatusExcluded(t *testing.T) {
	svc := NewAvailabilityService(nil)

	for _, status := range []models.AppointmentStatus{models.StatusDone, models.StatusCompleted, models.StatusCancelled, models.StatusShifted} {
		day := DaySnapshot{
			Date:    testDay,
			Punches: punchedIn("JANE"),
			Schedule: []models.Appointment{
				{ID: "s1", StartTime: "10:00", EndTime: "10:30", FirstAssistant: "JANE", Status: status},
			},
		}
		avail := svc.CheckWindow("JANE", "10:00", "10:30", "", day)
		assert.True(t, avail.Available, "status %s must not block", status)
	}
}

func TestCheckWindowUnparseableFailsOpen(t *testing.T) {
	svc := NewAvailabilityService(nil)

	day := DaySnapshot{
		Date:    testDay,
		Punches: punchedIn("JANE"),
		Schedule: []models.Appointment{
			{ID: "s1", StartTime: "10:00", EndTime: "10:30", FirstAssistant: "JANE", Status: models.StatusPending},
		},
	}

	avail := svc.CheckWindow("JANE", "not a time", "10:30", "", day)
	assert.True(t, avail.Available, "an unparseable requested window produces no conflict")

	// Same polarity when the booked slot's window is the malformed one.
	day.Schedule[0].StartTime = "garbage"
	avail = svc.CheckWindow("JANE", "10:00", "10:30", "", day)
	assert.True(t, avail.Available)
}

func TestCheckWindowMidnightWrap(t *testing.T) {
	svc := NewAvailabilityService(nil)

	day := DaySnapshot{
		Date:    testDay,
		Punches: punchedIn("JANE"),
		Schedule: []models.Appointment{
			{ID: "s1", PatientName: "Night", StartTime: "23:00", EndTime: "01:00", FirstAssistant: "JANE", Status: models.StatusPending},
		},
	}

	avail := svc.CheckWindow("JANE", "23:30", "23:45", "", day)
	assert.False(t, avail.Available)
}

func TestStatusAt(t *testing.T) {
	svc := NewAvailabilityService(nil)
	at := time.Date(testDay.Year(), testDay.Month(), testDay.Day(), 10, 15, 0, 0, time.UTC)

	day := DaySnapshot{
		Date:    testDay,
		Punches: punchedIn("JANE", "MARY", "NINA"),
		Blocks: []models.TimeBlock{
			{AssistantName: "NINA", Date: testDay, Reason: "inventory", StartTime: "10:00", EndTime: "12:00"},
		},
		Schedule: []models.Appointment{
			{ID: "s1", PatientName: "Rao", StartTime: "10:00", EndTime: "10:30", FirstAssistant: "MARY", Status: models.StatusOngoing},
		},
	}

	status := svc.StatusAt("MARY", at, day)
	assert.Equal(t, models.StateBusy, status.State)
	assert.Equal(t, "with Rao", status.Reason)

	status = svc.StatusAt("NINA", at, day)
	assert.Equal(t, models.StateBlocked, status.State)
	assert.Equal(t, "inventory", status.Reason)

	status = svc.StatusAt("JANE", at, day)
	assert.Equal(t, models.StateFree, status.State)

	status = svc.StatusAt("GHOST", at, day)
	assert.Equal(t, models.StateBlocked, status.State)
	assert.Equal(t, "not punched in", status.Reason)
}
