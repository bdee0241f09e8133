package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smilekraft/clinic-ops-api/internal/models"
)

func TestResolveCandidatesPrecedence(t *testing.T) {
	rule := models.RoleRule{
		TimeOverrides: []models.TimeOverride{
			{StartHour: 8, EndHour: 12, Candidates: []string{"A"}},
		},
		DoctorOverrides: map[string][]string{
			"SMITH": {"D"},
		},
		FirstAssistantOverrides: map[string][]string{
			"A": {"E"},
		},
		Default: []string{"B"},
	}

	tests := []struct {
		name   string
		role   models.Role
		doctor string
		hour   float64
		first  string
		want   []string
	}{
		{"time override wins inside window", models.RoleSecond, "SMITH", 9, "A", []string{"A"}},
		{"doctor override after window", models.RoleSecond, "SMITH", 14, "", []string{"D"}},
		{"first-assistant override when doctor unknown", models.RoleSecond, "JONES", 14, "A", []string{"E"}},
		{"default when nothing matches", models.RoleSecond, "JONES", 14, "Z", []string{"B"}},
		{"window end is exclusive", models.RoleSecond, "JONES", 12, "Z", []string{"B"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveCandidates(tc.role, rule, tc.doctor, tc.hour, tc.first)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveCandidatesFirstAssistantTierSkippedForFirstRole(t *testing.T) {
	rule := models.RoleRule{
		FirstAssistantOverrides: map[string][]string{"A": {"E"}},
		Default:                 []string{"B"},
	}
	got := ResolveCandidates(models.RoleFirst, rule, "JONES", 10, "A")
	assert.Equal(t, []string{"B"}, got)
}

func TestResolveCandidatesEmptyTierFallsThrough(t *testing.T) {
	rule := models.RoleRule{
		TimeOverrides: []models.TimeOverride{
			{StartHour: 8, EndHour: 12, Candidates: nil},
		},
		DoctorOverrides: map[string][]string{"SMITH": {}},
		Default:         []string{"B"},
	}
	got := ResolveCandidates(models.RoleSecond, rule, "SMITH", 9, "")
	assert.Equal(t, []string{"B"}, got)
}

func TestResolveCandidatesDoctorNameNormalized(t *testing.T) {
	rule := models.RoleRule{
		DoctorOverrides: map[string][]string{"SMITH": {"D"}},
	}
	got := ResolveCandidates(models.RoleFirst, rule, "Dr. Smith", 14, "")
	assert.Equal(t, []string{"D"}, got)
}
