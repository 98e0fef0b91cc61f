package planner

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkordes/tripboard/internal/domain"
)

// slotAt returns slot id of day n. Callers hold p.mu.
func slotAt(t *domain.Trip, n int, id domain.SlotID) (*domain.Slot, error) {
	d, err := dayAt(t, n)
	if err != nil {
		return nil, err
	}
	s := d.Slot(id)
	if s == nil {
		return nil, fmt.Errorf("day %d slot %q: %w", n, id, domain.ErrNotFound)
	}
	return s, nil
}

func poolIndex(t *domain.Trip, id string) int {
	for i := range t.Pool {
		if t.Pool[i].ID == id {
			return i
		}
	}
	return -1
}

// placedAnywhere reports whether a placed copy with id exists on any day.
func placedAnywhere(t *domain.Trip, id string) bool {
	for i := range t.Days {
		for j := range t.Days[i].Slots {
			for _, pp := range t.Days[i].Slots[j].Places {
				if pp.ID == id {
					return true
				}
			}
		}
	}
	return false
}

func placedIndex(s *domain.Slot, id string) int {
	for i := range s.Places {
		if s.Places[i].ID == id {
			return i
		}
	}
	return -1
}

// AddToPool adds places to the current trip's pool, skipping ids already
// there. New entries default to available. Returns the number added.
func (p *Planner) AddToPool(places ...domain.Place) (int, error) {
	added := 0
	err := p.mutateCurrent("AddToPool", func(t *domain.Trip) error {
		for _, pl := range places {
			if pl.ID == "" || poolIndex(t, pl.ID) >= 0 {
				continue
			}
			c := pl.Clone()
			if c.Status == "" {
				c.Status = domain.PoolAvailable
			}
			t.Pool = append(t.Pool, c)
			added++
		}
		if added == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// PlaceItem places pool entry itemID into a slot and returns the placed
// copy's id. The pool entry is left as it is.
func (p *Planner) PlaceItem(itemID string, day int, slot domain.SlotID) (string, error) {
	var placedID string
	err := p.mutateCurrent("PlaceItem", func(t *domain.Trip) error {
		i := poolIndex(t, itemID)
		if i < 0 {
			return fmt.Errorf("pool item %s: %w", itemID, domain.ErrNotFound)
		}
		id, err := p.place(t, t.Pool[i], day, slot)
		placedID = id
		return err
	})
	if err != nil {
		return "", err
	}
	return placedID, nil
}

// PlaceFromSaved places a place from the user's saved library, which need
// not be in the pool, into a slot and returns the placed copy's id.
func (p *Planner) PlaceFromSaved(place domain.Place, day int, slot domain.SlotID) (string, error) {
	if place.ID == "" {
		return "", fmt.Errorf("planner.Planner.PlaceFromSaved: %w: place id is required", domain.ErrValidation)
	}
	if place.Source == "" {
		place.Source = domain.SourceLibrary
	}
	var placedID string
	err := p.mutateCurrent("PlaceFromSaved", func(t *domain.Trip) error {
		id, err := p.place(t, place, day, slot)
		placedID = id
		return err
	})
	if err != nil {
		return "", err
	}
	return placedID, nil
}

// place appends a placed copy of pl to the slot. The copy keeps pl's id
// unless that id is already placed somewhere, in which case it gets a
// derived id. Either way it links back to pl's library id.
func (p *Planner) place(t *domain.Trip, pl domain.Place, day int, slot domain.SlotID) (string, error) {
	s, err := slotAt(t, day, slot)
	if err != nil {
		return "", err
	}
	c := pl.Clone()
	c.LibraryPlaceID = pl.LibraryID()
	c.Status = domain.PoolAvailable
	if placedAnywhere(t, pl.ID) {
		c.ID = p.derivedID(pl.ID)
	}
	s.Places = append(s.Places, domain.PlacedPlace{
		Place:    c,
		PlacedIn: domain.Placement{Day: day, Slot: slot},
	})
	return c.ID, nil
}

// MoveToSlot moves a placed copy from one cell to another. A move onto the
// same cell, or of a copy that is no longer in the source cell, does nothing.
func (p *Planner) MoveToSlot(placeID string, fromDay int, fromSlot domain.SlotID, toDay int, toSlot domain.SlotID) error {
	if fromDay == toDay && fromSlot == toSlot {
		return nil
	}
	return p.mutateCurrent("MoveToSlot", func(t *domain.Trip) error {
		src, err := slotAt(t, fromDay, fromSlot)
		if err != nil {
			return err
		}
		dst, err := slotAt(t, toDay, toSlot)
		if err != nil {
			return err
		}
		i := placedIndex(src, placeID)
		if i < 0 {
			return errNoChange
		}
		moved := src.Places[i]
		src.Places = append(src.Places[:i:i], src.Places[i+1:]...)
		if placedIndex(dst, moved.ID) >= 0 {
			moved.LibraryPlaceID = moved.LibraryID()
			moved.ID = p.derivedID(moved.LibraryPlaceID)
		}
		moved.PlacedIn = domain.Placement{Day: toDay, Slot: toSlot}
		dst.Places = append(dst.Places, moved)
		return nil
	})
}

// UnplaceFromSlot deletes a placed copy. The pool is not touched; the place
// stays available there independently. Unknown ids are ignored.
func (p *Planner) UnplaceFromSlot(placeID string, day int, slot domain.SlotID) error {
	return p.mutateCurrent("UnplaceFromSlot", func(t *domain.Trip) error {
		s, err := slotAt(t, day, slot)
		if err != nil {
			return err
		}
		i := placedIndex(s, placeID)
		if i < 0 {
			return errNoChange
		}
		s.Places = append(s.Places[:i:i], s.Places[i+1:]...)
		return nil
	})
}

// RemoveFromSlot clears a whole slot: placed copies, ghosts, and quick entries.
func (p *Planner) RemoveFromSlot(day int, slot domain.SlotID) error {
	return p.mutateCurrent("RemoveFromSlot", func(t *domain.Trip) error {
		s, err := slotAt(t, day, slot)
		if err != nil {
			return err
		}
		if s.Empty() && len(s.QuickEntries) == 0 {
			return errNoChange
		}
		s.Places = []domain.PlacedPlace{}
		s.Ghosts = []domain.Ghost{}
		s.QuickEntries = []domain.QuickEntry{}
		return nil
	})
}

// RejectItem marks a pool entry rejected.
func (p *Planner) RejectItem(id string) error {
	return p.UpdateItemStatus(id, domain.PoolRejected)
}

// UpdateItemStatus sets the status of a pool entry.
func (p *Planner) UpdateItemStatus(id string, status domain.PoolStatus) error {
	if status != domain.PoolAvailable && status != domain.PoolRejected {
		return fmt.Errorf("planner.Planner.UpdateItemStatus: %w: unknown status %q", domain.ErrValidation, status)
	}
	return p.mutateCurrent("UpdateItemStatus", func(t *domain.Trip) error {
		i := poolIndex(t, id)
		if i < 0 {
			return fmt.Errorf("pool item %s: %w", id, domain.ErrNotFound)
		}
		if t.Pool[i].Status == status {
			return errNoChange
		}
		t.Pool[i].Status = status
		return nil
	})
}

// RatePlace records a rating on the logical place: the pool entry and every
// placed or ghost copy of it, wherever they are.
func (p *Planner) RatePlace(id string, rating domain.Rating) error {
	if rating.RatedAt.IsZero() {
		rating.RatedAt = p.clock.Now()
	}
	return p.mutateCurrent("RatePlace", func(t *domain.Trip) error {
		lib, ok := libraryIDOf(t, id)
		if !ok {
			return fmt.Errorf("place %s: %w", id, domain.ErrNotFound)
		}
		same := func(pl *domain.Place) bool {
			return pl.ID == id || pl.LibraryID() == lib
		}
		rate := func(pl *domain.Place) {
			r := rating
			pl.Rating = &r
		}
		for i := range t.Pool {
			if same(&t.Pool[i]) {
				rate(&t.Pool[i])
			}
		}
		for i := range t.Days {
			for j := range t.Days[i].Slots {
				s := &t.Days[i].Slots[j]
				for k := range s.Places {
					if same(&s.Places[k].Place) {
						rate(&s.Places[k].Place)
					}
				}
				for k := range s.Ghosts {
					if same(&s.Ghosts[k].Place) {
						rate(&s.Ghosts[k].Place)
					}
				}
			}
		}
		return nil
	})
}

// libraryIDOf finds the place with id anywhere on the trip and returns its
// library id.
func libraryIDOf(t *domain.Trip, id string) (string, bool) {
	for _, pl := range t.Pool {
		if pl.ID == id {
			return pl.LibraryID(), true
		}
	}
	for i := range t.Days {
		for j := range t.Days[i].Slots {
			s := &t.Days[i].Slots[j]
			for _, pp := range s.Places {
				if pp.ID == id {
					return pp.LibraryID(), true
				}
			}
			for _, g := range s.Ghosts {
				if g.ID == id {
					return g.LibraryID(), true
				}
			}
		}
	}
	return "", false
}

// SetPlaceTime sets (or, with an empty time, clears) the specific time of a
// placed copy, then re-sorts the slot: timed entries first in chronological
// order, untimed entries after them in their existing order.
func (p *Planner) SetPlaceTime(day int, slot domain.SlotID, placeID, at, label string) error {
	at = strings.TrimSpace(at)
	if at != "" {
		if _, ok := minutesOf(at); !ok {
			return fmt.Errorf("planner.Planner.SetPlaceTime: %w: time %q must be HH:MM", domain.ErrValidation, at)
		}
	}
	return p.mutateCurrent("SetPlaceTime", func(t *domain.Trip) error {
		s, err := slotAt(t, day, slot)
		if err != nil {
			return err
		}
		i := placedIndex(s, placeID)
		if i < 0 {
			return fmt.Errorf("placed %s: %w", placeID, domain.ErrNotFound)
		}
		s.Places[i].SpecificTime = at
		s.Places[i].TimeLabel = label
		if at == "" {
			s.Places[i].TimeLabel = ""
		}
		sortByTime(s.Places)
		return nil
	})
}

func sortByTime(places []domain.PlacedPlace) {
	sort.SliceStable(places, func(i, j int) bool {
		a, aok := minutesOf(places[i].SpecificTime)
		b, bok := minutesOf(places[j].SpecificTime)
		switch {
		case aok && bok:
			return a < b
		case aok:
			return true
		}
		return false
	})
}

// minutesOf parses "H:MM" or "HH:MM" into minutes after midnight.
func minutesOf(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(m) != 2 {
		return 0, false
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}
