package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesFixture = `
policy:
  cross_department: true
  load_balance: true
departments:
  endo:
    doctors: ["Dr. Smith"]
    assistants: ["amy", "bea"]
    roles:
      first:
        time_overrides:
          - start_hour: 8
            end_hour: 12
            candidates: ["amy"]
        doctor_overrides:
          "Dr. Smith": ["bea"]
        default: ["amy"]
`

func TestRulesRepositoryLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "department_rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rulesFixture), 0o644))

	rules := NewRulesRepository(path, nil).Load()

	assert.True(t, rules.Policy.CrossDepartment)
	assert.True(t, rules.Policy.LoadBalance)

	endo, ok := rules.Departments["ENDO"]
	require.True(t, ok, "department keys are uppercased")
	assert.Equal(t, []string{"SMITH"}, endo.Doctors)
	assert.Equal(t, []string{"AMY", "BEA"}, endo.Assistants)

	first, ok := endo.Roles["FIRST"]
	require.True(t, ok, "role keys are uppercased")
	assert.Equal(t, []string{"AMY"}, first.Default)
	require.Len(t, first.TimeOverrides, 1)
	assert.Equal(t, []string{"AMY"}, first.TimeOverrides[0].Candidates)
	assert.Equal(t, []string{"BEA"}, first.DoctorOverrides["SMITH"], "doctor keys drop the honorific")
}

func TestRulesRepositoryLoadsShippedDocument(t *testing.T) {
	rules := NewRulesRepository(filepath.Join("..", "..", "department_rules.yaml"), nil).Load()

	assert.True(t, rules.Policy.CrossDepartment)
	assert.True(t, rules.Policy.LoadBalance)
	assert.False(t, rules.Policy.UseRoleFlags)

	endo, ok := rules.Departments["ENDO"]
	require.True(t, ok)
	assert.Equal(t, []string{"ANAND", "MEHTA"}, endo.Doctors)
	assert.Equal(t, []string{"PRIYA", "KAVYA", "RITU"}, endo.Assistants)

	first, ok := endo.Roles["FIRST"]
	require.True(t, ok)
	assert.Equal(t, []string{"PRIYA", "KAVYA"}, first.Default)
	assert.Equal(t, []string{"KAVYA"}, first.DoctorOverrides["MEHTA"], "dotted override keys survive the decode")
	require.Len(t, first.TimeOverrides, 1)
	assert.Equal(t, []string{"PRIYA"}, first.TimeOverrides[0].Candidates)

	second, ok := endo.Roles["SECOND"]
	require.True(t, ok)
	assert.Equal(t, []string{"KAVYA", "RITU"}, second.FirstAssistantOverrides["PRIYA"])

	ortho, ok := rules.Departments["ORTHO"]
	require.True(t, ok)
	assert.Equal(t, []string{"SHAH"}, ortho.Doctors)
}

func TestRulesRepositoryMissingFileDegrades(t *testing.T) {
	rules := NewRulesRepository(filepath.Join(t.TempDir(), "nope.yaml"), nil).Load()
	assert.Empty(t, rules.Departments)
	assert.False(t, rules.Policy.CrossDepartment)

	rules = NewRulesRepository("", nil).Load()
	assert.Empty(t, rules.Departments)
}

func TestRulesRepositoryMalformedFileDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "department_rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - not yaml {{"), 0o644))

	rules := NewRulesRepository(path, nil).Load()
	assert.Empty(t, rules.Departments)
}
