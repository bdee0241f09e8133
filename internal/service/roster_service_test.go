package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilekraft/clinic-ops-api/internal/models"
)

func TestRosterIndexDepartments(t *testing.T) {
	assistants := &stubAssistantSource{list: []models.Assistant{
		{ID: "1", Name: "Amy", Department: "endo", Active: true},
		{ID: "2", Name: "Bea", Active: true},       // department comes from the rules document
		{ID: "3", Name: "Cleo", Active: true},      // unresolvable, lands in SHARED
	}}
	doctors := &stubDoctorSource{list: []models.Doctor{
		{ID: "d1", Name: "Dr. Smith", Department: "ENDO", Active: true},
		{ID: "d2", Name: "Jones", Active: true},
	}}
	rules := &stubRuleSource{rules: models.RuleSet{
		Departments: map[string]models.DepartmentRules{
			"ORTHO": {Assistants: []string{"BEA"}, Doctors: []string{"JONES"}},
		},
	}}

	svc := NewRosterService(assistants, doctors, rules, nil)
	idx, err := svc.Index(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AMY", "BEA", "CLEO"}, idx.AssistantNames)
	assert.Equal(t, "ENDO", idx.AssistantDepartment("amy"))
	assert.Equal(t, "ORTHO", idx.AssistantDepartment("Bea"))
	assert.Equal(t, models.SharedDepartment, idx.AssistantDepartment("CLEO"))
	assert.Equal(t, models.SharedDepartment, idx.AssistantDepartment("NOBODY"))

	assert.Equal(t, "ENDO", idx.DoctorDepartment("Dr. Smith"))
	assert.Equal(t, "ORTHO", idx.DoctorDepartment("JONES"))
	assert.Empty(t, idx.DoctorDepartment("UNKNOWN"))
}

func TestRosterIndexWeeklyOff(t *testing.T) {
	assistants := &stubAssistantSource{list: []models.Assistant{
		{ID: "1", Name: "AMY", Active: true, WeeklyOff: types.JSONText(`[0,6]`)},
	}}
	svc := NewRosterService(assistants, &stubDoctorSource{}, &stubRuleSource{}, nil)

	idx, err := svc.Index(context.Background())
	require.NoError(t, err)

	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, idx.WeeklyOffSet(monday)["AMY"])
	tuesday := monday.AddDate(0, 0, 1)
	assert.False(t, idx.WeeklyOffSet(tuesday)["AMY"])
	sunday := monday.AddDate(0, 0, 6)
	assert.True(t, idx.WeeklyOffSet(sunday)["AMY"])
}

func TestRosterIndexRebuildsOnBump(t *testing.T) {
	source := &stubAssistantSource{list: []models.Assistant{
		{ID: "1", Name: "AMY", Department: "ENDO", Active: true},
	}}
	svc := NewRosterService(source, &stubDoctorSource{}, &stubRuleSource{}, nil)

	idx, err := svc.Index(context.Background())
	require.NoError(t, err)
	gen := idx.Generation
	assert.Equal(t, []string{"AMY"}, idx.AssistantNames)

	// Without a bump the cached index is served even after the source moved.
	source.list = append(source.list, models.Assistant{ID: "2", Name: "BEA", Department: "ENDO", Active: true})
	idx, err = svc.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AMY"}, idx.AssistantNames)

	svc.Bump()
	idx, err = svc.Index(context.Background())
	require.NoError(t, err)
	assert.Greater(t, idx.Generation, gen)
	assert.Equal(t, []string{"AMY", "BEA"}, idx.AssistantNames)
}
