package service

import "github.com/smilekraft/clinic-ops-api/internal/models"

// AssignmentLoads counts how many live slots each assistant is named on
// across all three roles. Terminal slots and the excluded slot contribute
// nothing, so a cancelled appointment never skews load balancing.
func AssignmentLoads(schedule []models.Appointment, excludeSlotID string) map[string]int {
	loads := make(map[string]int)
	for _, slot := range schedule {
		if slot.ID == excludeSlotID || slot.Status.Terminal() {
			continue
		}
		for _, assigned := range slot.Assistants() {
			name := models.NormalizeName(assigned)
			if name == "" {
				continue
			}
			loads[name]++
		}
	}
	return loads
}
