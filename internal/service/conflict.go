package service

import (
	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
)

// ConflictDetector finds overlapping events in an expanded sequence.
type ConflictDetector struct{}

// NewConflictDetector constructs a ConflictDetector.
func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{}
}

// Overlap reports whether two events occupy intersecting intervals on the same date.
func (d *ConflictDetector) Overlap(a, b models.Event) bool {
	return dateutil.Overlaps(a.Date, a.Time, a.DurationMinutes, b.Date, b.Time, b.DurationMinutes)
}

// Groups partitions the overlapping events of expanded into disjoint groups of
// at least two. Each unassigned event seeds a group and pulls in the later,
// unassigned events that overlap it. The scan is quadratic in len(expanded);
// group membership and order depend on it.
func (d *ConflictDetector) Groups(expanded []models.Event) [][]models.Event {
	groups := make([][]models.Event, 0)
	assigned := make([]bool, len(expanded))
	for i := range expanded {
		if assigned[i] {
			continue
		}
		group := []models.Event{expanded[i]}
		for j := i + 1; j < len(expanded); j++ {
			if assigned[j] {
				continue
			}
			if d.Overlap(expanded[i], expanded[j]) {
				group = append(group, expanded[j])
				assigned[j] = true
			}
		}
		if len(group) > 1 {
			assigned[i] = true
			groups = append(groups, group)
		}
	}
	return groups
}

// FirstConflict returns the earliest event of expanded, in collection order,
// that overlaps any of the candidates, ignoring every occurrence of the series excludeBaseID. Nil means
// the candidates fit.
func (d *ConflictDetector) FirstConflict(candidates, expanded []models.Event, excludeBaseID string) *models.Event {
	for _, existing := range expanded {
		if excludeBaseID != "" && existing.Ref().BaseID == excludeBaseID {
			continue
		}
		for _, candidate := range candidates {
			if d.Overlap(candidate, existing) {
				found := existing.Clone()
				return &found
			}
		}
	}
	return nil
}
