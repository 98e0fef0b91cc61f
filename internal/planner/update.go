package planner

import "github.com/pkordes/tripboard/internal/domain"

// UpdateCurrent applies fn to the trip whose id is currentID and returns a new
// collection with that entry replaced. Other entries are carried over by
// pointer, not cloned. It reports false, returning trips unchanged, when no
// trip matches or fn declines the update.
func UpdateCurrent(trips []*domain.Trip, currentID string, fn func(*domain.Trip) (*domain.Trip, bool)) ([]*domain.Trip, bool) {
	return UpdateTrip(trips, currentID, fn)
}

// UpdateTrip is UpdateCurrent for an explicit id.
func UpdateTrip(trips []*domain.Trip, id string, fn func(*domain.Trip) (*domain.Trip, bool)) ([]*domain.Trip, bool) {
	for i, t := range trips {
		if t.ID != id {
			continue
		}
		next, ok := fn(t)
		if !ok || next == nil {
			return trips, false
		}
		out := make([]*domain.Trip, len(trips))
		copy(out, trips)
		out[i] = next
		return out, true
	}
	return trips, false
}
