package service

import (
	"github.com/smilekraft/clinic-ops-api/internal/models"
)

// ResolveCandidates walks a role rule's override tiers in fixed precedence
// order and returns the first non-empty candidate list:
//
//  1. time overrides, matched against the slot's start hour
//  2. doctor overrides, keyed by normalized doctor name
//  3. first-assistant overrides, keyed by the FIRST pick of this slot
//  4. the default list
//
// A tier that matches but names nobody still wins over lower tiers only
// when non-empty; empty matches fall through. Returned names are already
// normalized by the rules loader.
func ResolveCandidates(role models.Role, rule models.RoleRule, doctorName string, slotStartHour float64, chosenFirst string) []string {
	for _, window := range rule.TimeOverrides {
		if slotStartHour >= window.StartHour && slotStartHour < window.EndHour && len(window.Candidates) > 0 {
			return window.Candidates
		}
	}

	if len(rule.DoctorOverrides) > 0 {
		if candidates := rule.DoctorOverrides[models.NormalizeName(doctorName)]; len(candidates) > 0 {
			return candidates
		}
	}

	if role != models.RoleFirst && len(rule.FirstAssistantOverrides) > 0 {
		if candidates := rule.FirstAssistantOverrides[models.NormalizeName(chosenFirst)]; len(candidates) > 0 {
			return candidates
		}
	}

	return rule.Default
}
