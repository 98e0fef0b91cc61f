package planner

import (
	"strings"

	"github.com/pkordes/tripboard/internal/domain"
)

// maxGhostsPerBatch caps suggestions injected by one InjectGhostCandidates call.
const maxGhostsPerBatch = 6

// preferredSlots maps a place type to the slots a suggestion of that type
// may land in, in order of preference.
var preferredSlots = map[domain.PlaceType][]domain.SlotID{
	domain.PlaceRestaurant:   {domain.SlotLunch, domain.SlotDinner},
	domain.PlaceCafe:         {domain.SlotBreakfast, domain.SlotMorning},
	domain.PlaceBar:          {domain.SlotEvening},
	domain.PlaceMuseum:       {domain.SlotMorning, domain.SlotAfternoon},
	domain.PlaceActivity:     {domain.SlotMorning, domain.SlotAfternoon},
	domain.PlacePark:         {domain.SlotMorning, domain.SlotAfternoon},
	domain.PlaceShop:         {domain.SlotAfternoon, domain.SlotMorning},
	domain.PlaceNeighborhood: {domain.SlotAfternoon, domain.SlotMorning},
}

// GhostCandidate is a suggested place offered for injection.
type GhostCandidate struct {
	domain.Place
	Rationale  string
	Confidence float64
}

func ghostIndex(s *domain.Slot, id string) int {
	for i := range s.Ghosts {
		if s.Ghosts[i].ID == id {
			return i
		}
	}
	return -1
}

// ConfirmGhost accepts a ghost suggestion: it becomes a confirmed placed
// copy at the end of the same slot. Unknown ghost ids are ignored.
func (p *Planner) ConfirmGhost(day int, slot domain.SlotID, ghostID string) error {
	return p.mutateCurrent("ConfirmGhost", func(t *domain.Trip) error {
		s, err := slotAt(t, day, slot)
		if err != nil {
			return err
		}
		i := ghostIndex(s, ghostID)
		if i < 0 {
			return errNoChange
		}
		g := s.Ghosts[i]
		s.Ghosts = append(s.Ghosts[:i:i], s.Ghosts[i+1:]...)

		pl := g.Place.Clone()
		pl.Status = domain.PoolAvailable
		pl.LibraryPlaceID = pl.LibraryID()
		if placedIndex(s, pl.ID) >= 0 {
			pl.ID = p.derivedID(pl.LibraryPlaceID)
		}
		s.Places = append(s.Places, domain.PlacedPlace{
			Place:     pl,
			PlacedIn:  domain.Placement{Day: day, Slot: slot},
			Confirmed: true,
		})
		return nil
	})
}

// DismissGhost removes a ghost suggestion. Unknown ghost ids are ignored.
func (p *Planner) DismissGhost(day int, slot domain.SlotID, ghostID string) error {
	return p.mutateCurrent("DismissGhost", func(t *domain.Trip) error {
		s, err := slotAt(t, day, slot)
		if err != nil {
			return err
		}
		i := ghostIndex(s, ghostID)
		if i < 0 {
			return errNoChange
		}
		s.Ghosts = append(s.Ghosts[:i:i], s.Ghosts[i+1:]...)
		return nil
	})
}

// InjectGhostCandidates seeds the current trip with suggestions. A candidate
// is kept when its location matches a trip destination and no place of the
// same name is already on the board. At most six are kept; each goes into
// the first empty preferred slot on a day at its destination, scanning days
// in order. Candidates without a free slot are dropped. Returns the number
// injected.
func (p *Planner) InjectGhostCandidates(cands []GhostCandidate) (int, error) {
	injected := 0
	err := p.mutateCurrent("InjectGhostCandidates", func(t *domain.Trip) error {
		seen := boardNames(t)
		var batch []GhostCandidate
		for _, c := range cands {
			if len(batch) == maxGhostsPerBatch {
				break
			}
			if !locatedOnTrip(t, c.Location) {
				continue
			}
			key := nameKey(c.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			batch = append(batch, c)
		}

		for _, c := range batch {
			if s := firstFreeSlot(t, c); s != nil {
				pl := c.Place.Clone()
				pl.Source = domain.SourceGhost
				pl.Status = domain.PoolAvailable
				s.Ghosts = append(s.Ghosts, domain.Ghost{
					Place:       pl,
					GhostStatus: domain.GhostProposed,
					Rationale:   c.Rationale,
					Confidence:  c.Confidence,
				})
				injected++
			}
		}
		if injected == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return injected, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// boardNames returns the lowercased names of every pool, placed, and ghost
// place on t.
func boardNames(t *domain.Trip) map[string]bool {
	seen := make(map[string]bool)
	for _, pl := range t.Pool {
		seen[nameKey(pl.Name)] = true
	}
	for i := range t.Days {
		for j := range t.Days[i].Slots {
			s := &t.Days[i].Slots[j]
			for _, pp := range s.Places {
				seen[nameKey(pp.Name)] = true
			}
			for _, g := range s.Ghosts {
				seen[nameKey(g.Name)] = true
			}
		}
	}
	return seen
}

func locatedOnTrip(t *domain.Trip, location string) bool {
	for _, d := range t.Destinations {
		if matchesDestination(location, d) {
			return true
		}
	}
	return false
}

func firstFreeSlot(t *domain.Trip, c GhostCandidate) *domain.Slot {
	prefs := preferredSlots[c.Type]
	if len(prefs) == 0 {
		return nil
	}
	for i := range t.Days {
		d := &t.Days[i]
		if !matchesDestination(c.Location, d.Destination) {
			continue
		}
		for _, id := range prefs {
			if s := d.Slot(id); s != nil && s.Empty() {
				return s
			}
		}
	}
	return nil
}
