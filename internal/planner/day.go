package planner

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripboard/internal/domain"
)

// Position says on which side of a reference day InsertDay puts the new day.
type Position int

const (
	Before Position = iota
	After
)

// dayAt returns the day with number n. Callers hold p.mu.
func dayAt(t *domain.Trip, n int) (*domain.Day, error) {
	if n < 1 || n > len(t.Days) {
		return nil, fmt.Errorf("day %d: %w", n, domain.ErrNotFound)
	}
	return &t.Days[n-1], nil
}

// SetDestination sets the destination of day n. The trip's destination list
// is recomputed from its days, so a replaced name no day uses is dropped.
func (p *Planner) SetDestination(n int, destination string) error {
	destination = strings.TrimSpace(destination)
	return p.mutateCurrent("SetDestination", func(t *domain.Trip) error {
		d, err := dayAt(t, n)
		if err != nil {
			return err
		}
		if d.Destination == destination {
			return errNoChange
		}
		d.Destination = destination
		t.Destinations = destinationsFromDays(t.Days)
		return nil
	})
}

// ReorderDay moves day from to position to and renumbers every day. The
// viewed day follows the moved day; a move across the viewed day shifts it
// by one toward the vacated position.
func (p *Planner) ReorderDay(from, to int) error {
	return p.mutateCurrent("ReorderDay", func(t *domain.Trip) error {
		if _, err := dayAt(t, from); err != nil {
			return err
		}
		if _, err := dayAt(t, to); err != nil {
			return err
		}
		if from == to {
			return errNoChange
		}

		moved := t.Days[from-1]
		days := append(t.Days[:from-1:from-1], t.Days[from:]...)
		days = append(days[:to-1], append([]domain.Day{moved}, days[to-1:]...)...)
		t.Days = days
		renumber(t.Days)
		if err := rederiveDates(t); err != nil {
			return err
		}

		p.currentDay = viewAfterReorder(p.currentDay, from, to)
		return nil
	})
}

func viewAfterReorder(view, from, to int) int {
	switch {
	case view == from:
		return to
	case from < view && to >= view:
		return view - 1
	case from > view && to <= view:
		return view + 1
	}
	return view
}

// DeleteDay removes day n. Its placed places return to the pool as
// available. The last remaining day cannot be deleted.
func (p *Planner) DeleteDay(n int) error {
	return p.mutateCurrent("DeleteDay", func(t *domain.Trip) error {
		d, err := dayAt(t, n)
		if err != nil {
			return err
		}
		if len(t.Days) == 1 {
			return domain.ErrLastDay
		}

		t.Pool = append(t.Pool, unplaceDay(d)...)
		t.Days = append(t.Days[:n-1:n-1], t.Days[n:]...)
		renumber(t.Days)
		if err := rederiveDates(t); err != nil {
			return err
		}
		t.Destinations = destinationsFromDays(t.Days)

		switch {
		case p.currentDay > n:
			p.currentDay--
		case p.currentDay > len(t.Days):
			p.currentDay = len(t.Days)
		}
		return nil
	})
}

// InsertDay inserts a blank day immediately before or after day ref and
// views it. On dated trips every date is re-derived and the end date moves
// out by one day.
func (p *Planner) InsertDay(pos Position, ref int) error {
	return p.mutateCurrent("InsertDay", func(t *domain.Trip) error {
		if _, err := dayAt(t, ref); err != nil {
			return err
		}
		at := ref - 1
		if pos == After {
			at = ref
		}
		n := insertDay(t, at, domain.NewDay(0, ""))
		if err := rederiveDates(t); err != nil {
			return err
		}
		p.currentDay = n
		return nil
	})
}

// DuplicateDay inserts a copy of day ref right after it and views the copy.
// The copy keeps destination, lodging, and transport (with new transport
// ids) but starts with empty slots.
func (p *Planner) DuplicateDay(ref int) error {
	return p.mutateCurrent("DuplicateDay", func(t *domain.Trip) error {
		src, err := dayAt(t, ref)
		if err != nil {
			return err
		}
		clone := domain.NewDay(0, src.Destination)
		if src.Lodging != nil {
			l := *src.Lodging
			clone.Lodging = &l
		}
		for _, ev := range src.Transport {
			ev.ID = uuid.NewString()
			clone.Transport = append(clone.Transport, ev)
		}
		n := insertDay(t, ref, clone)
		if err := rederiveDates(t); err != nil {
			return err
		}
		p.currentDay = n
		return nil
	})
}

// insertDay puts d at index at, renumbers, and returns d's day number.
func insertDay(t *domain.Trip, at int, d domain.Day) int {
	days := make([]domain.Day, 0, len(t.Days)+1)
	days = append(days, t.Days[:at]...)
	days = append(days, d)
	days = append(days, t.Days[at:]...)
	t.Days = days
	renumber(t.Days)
	return at + 1
}

// ClearDay returns every placed place on day n to the pool and empties its
// placed and ghost lists. Does nothing if no place is placed.
func (p *Planner) ClearDay(n int) error {
	return p.mutateCurrent("ClearDay", func(t *domain.Trip) error {
		d, err := dayAt(t, n)
		if err != nil {
			return err
		}
		if d.PlacedCount() == 0 {
			return errNoChange
		}
		t.Pool = append(t.Pool, unplaceDay(d)...)
		for i := range d.Slots {
			d.Slots[i].Places = []domain.PlacedPlace{}
			d.Slots[i].Ghosts = []domain.Ghost{}
		}
		return nil
	})
}

// unplaceDay returns the pool form of every placed place on d.
func unplaceDay(d *domain.Day) []domain.Place {
	var out []domain.Place
	for i := range d.Slots {
		for _, pp := range d.Slots[i].Places {
			out = append(out, pp.Unplace())
		}
	}
	return out
}

// AppendDestination adds a destination to the trip with one new day at the
// end, and views that day. Rejects a destination the trip already has.
func (p *Planner) AppendDestination(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("planner.Planner.AppendDestination: %w: destination is required", domain.ErrValidation)
	}
	return p.mutateCurrent("AppendDestination", func(t *domain.Trip) error {
		if t.HasDestination(name) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateDestination, name)
		}
		t.Destinations = append(t.Destinations, name)
		n := insertDay(t, len(t.Days), domain.NewDay(0, name))
		if err := rederiveDates(t); err != nil {
			return err
		}
		p.currentDay = n
		return nil
	})
}

// SetLodging sets (or with nil, clears) the lodging of day n.
func (p *Planner) SetLodging(n int, lodging *domain.Lodging) error {
	return p.mutateCurrent("SetLodging", func(t *domain.Trip) error {
		d, err := dayAt(t, n)
		if err != nil {
			return err
		}
		d.Lodging = copyLodging(lodging)
		return nil
	})
}

// SetLodgingForDestination applies lodging to every day whose destination
// matches, for multi-night stays. Returns the number of days updated.
func (p *Planner) SetLodgingForDestination(destination string, lodging *domain.Lodging) (int, error) {
	updated := 0
	err := p.mutateCurrent("SetLodgingForDestination", func(t *domain.Trip) error {
		for i := range t.Days {
			if strings.EqualFold(strings.TrimSpace(t.Days[i].Destination), strings.TrimSpace(destination)) {
				t.Days[i].Lodging = copyLodging(lodging)
				updated++
			}
		}
		if updated == 0 {
			return fmt.Errorf("destination %q: %w", destination, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func copyLodging(l *domain.Lodging) *domain.Lodging {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// AddTransport appends a transport event to day n and returns its new id.
func (p *Planner) AddTransport(n int, ev domain.TransportEvent) (string, error) {
	ev.ID = uuid.NewString()
	err := p.mutateCurrent("AddTransport", func(t *domain.Trip) error {
		d, err := dayAt(t, n)
		if err != nil {
			return err
		}
		d.Transport = append(d.Transport, ev)
		return nil
	})
	if err != nil {
		return "", err
	}
	return ev.ID, nil
}

// UpdateTransport replaces the transport event on day n with ev.ID.
func (p *Planner) UpdateTransport(n int, ev domain.TransportEvent) error {
	return p.mutateCurrent("UpdateTransport", func(t *domain.Trip) error {
		d, err := dayAt(t, n)
		if err != nil {
			return err
		}
		for i := range d.Transport {
			if d.Transport[i].ID == ev.ID {
				d.Transport[i] = ev
				return nil
			}
		}
		return fmt.Errorf("transport %s: %w", ev.ID, domain.ErrNotFound)
	})
}

// RemoveTransport deletes the transport event id from day n.
func (p *Planner) RemoveTransport(n int, id string) error {
	return p.mutateCurrent("RemoveTransport", func(t *domain.Trip) error {
		d, err := dayAt(t, n)
		if err != nil {
			return err
		}
		for i := range d.Transport {
			if d.Transport[i].ID == id {
				d.Transport = append(d.Transport[:i:i], d.Transport[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("transport %s: %w", id, domain.ErrNotFound)
	})
}
