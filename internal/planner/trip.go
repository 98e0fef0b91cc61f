package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/persist"
)

// CreateInput describes a new trip. Leave StartDate empty for a
// date-flexible trip sized by DayCount.
type CreateInput struct {
	Name            string
	Destinations    []string
	GeoDestinations []domain.Destination
	StartDate       string
	EndDate         string
	DayCount        int
	// Allocation optionally maps destination name to its number of days.
	Allocation map[string]int
	GroupSize  int
	GroupType  string
	Status     domain.Status
}

// CreateTrip builds the trip locally, selects it, and returns its temporary
// id at once. The create request runs in the background; when it succeeds
// the trip's id is swapped for the server's.
func (p *Planner) CreateTrip(in CreateInput) (string, error) {
	t, err := p.insertNewTrip(in)
	if err != nil {
		return "", fmt.Errorf("planner.Planner.CreateTrip: %w", err)
	}
	req := createRequest(t)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
		defer cancel()
		// The error is logged and reflected in the trip's SyncState.
		_, _ = p.createAndSwap(ctx, t.ID, req)
	}()
	return t.ID, nil
}

// CreateTripAsync is CreateTrip, but waits for the create request and returns
// the server-assigned id. On failure the trip is kept locally, marked
// unsynced, and its temporary id is returned with the error.
func (p *Planner) CreateTripAsync(ctx context.Context, in CreateInput) (string, error) {
	t, err := p.insertNewTrip(in)
	if err != nil {
		return "", fmt.Errorf("planner.Planner.CreateTripAsync: %w", err)
	}
	id, err := p.createAndSwap(ctx, t.ID, createRequest(t))
	if err != nil {
		return t.ID, fmt.Errorf("planner.Planner.CreateTripAsync: %w", err)
	}
	return id, nil
}

// RetrySync re-issues the create request for a trip whose create failed,
// sending its current state, and swaps in the server id on success.
func (p *Planner) RetrySync(ctx context.Context, id string) (string, error) {
	p.mu.Lock()
	t := p.find(id)
	if t == nil {
		p.mu.Unlock()
		return "", fmt.Errorf("planner.Planner.RetrySync: trip %s: %w", id, domain.ErrNotFound)
	}
	if t.SyncState != domain.SyncUnsynced {
		p.mu.Unlock()
		return id, nil
	}
	next := t.Clone()
	next.SyncState = domain.SyncPending
	p.trips, _ = UpdateTrip(p.trips, id, func(*domain.Trip) (*domain.Trip, bool) { return next, true })
	// The request carries everything done so far.
	p.revisions[id] = 0
	p.pending.Add(id)
	req := createRequest(next)
	p.mu.Unlock()

	newID, err := p.createAndSwap(ctx, id, req)
	if err != nil {
		return id, fmt.Errorf("planner.Planner.RetrySync: %w", err)
	}
	return newID, nil
}

// insertNewTrip builds the full skeleton, inserts the trip, selects it, and
// marks its temporary id pending.
func (p *Planner) insertNewTrip(in CreateInput) (*domain.Trip, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	destinations := cleanDestinations(in.Destinations)
	if len(destinations) == 0 {
		return nil, fmt.Errorf("%w: at least one destination is required", domain.ErrValidation)
	}

	now := p.clock.Now()
	t := &domain.Trip{
		ID:              p.newTempID(),
		Name:            name,
		Destinations:    destinations,
		GeoDestinations: append([]domain.Destination(nil), in.GeoDestinations...),
		GroupSize:       in.GroupSize,
		GroupType:       in.GroupType,
		Status:          in.Status,
		Pool:            []domain.Place{},
		CreatedAt:       now,
		UpdatedAt:       now,
		SyncState:       domain.SyncPending,
	}

	var n int
	if in.StartDate != "" {
		end := in.EndDate
		if end == "" {
			end = in.StartDate
		}
		days, err := domain.DaysInclusive(in.StartDate, end)
		if err != nil {
			return nil, err
		}
		n = days
		t.Dates = &domain.DateRange{Start: in.StartDate, End: end}
	} else {
		if in.DayCount < 1 {
			return nil, fmt.Errorf("%w: day count must be at least 1 for a flexible trip", domain.ErrValidation)
		}
		n = in.DayCount
	}
	if t.Status == "" {
		t.Status = domain.StatusPlanning
		if t.Flexible() {
			t.Status = domain.StatusDreaming
		}
	}
	if !t.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, t.Status)
	}

	t.Days = buildDays(destinations, n, in.Allocation)
	if err := rederiveDates(t); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.trips = append(append([]*domain.Trip(nil), p.trips...), t)
	p.currentID = t.ID
	p.currentDay = 1
	p.revisions[t.ID] = 0
	p.pending.Add(t.ID)
	return t.Clone(), nil
}

// createAndSwap issues the create request for tempID and reconciles the
// server id into the collection.
func (p *Planner) createAndSwap(ctx context.Context, tempID string, req domain.CreateRequest) (string, error) {
	serverID, err := p.remote.Create(ctx, req)
	if err != nil {
		p.markUnsynced(tempID)
		p.log.Error("trip create failed; keeping local copy", "trip_id", tempID, "error", err)
		return "", err
	}
	if err := p.swapID(ctx, tempID, serverID); err != nil {
		return serverID, err
	}
	return serverID, nil
}

// markUnsynced flags id as local-only and then drops it from the pending
// set, so no write can observe it unpending but still marked pending.
func (p *Planner) markUnsynced(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tombstones, id)
	p.trips, _ = UpdateTrip(p.trips, id, func(t *domain.Trip) (*domain.Trip, bool) {
		next := t.Clone()
		next.SyncState = domain.SyncUnsynced
		return next, true
	})
	p.pending.Remove(id)
}

// swapID replaces tempID with serverID everywhere it is referenced. If the
// trip was mutated while the create was in flight, its full state is written
// under serverID immediately; nothing is ever written under tempID.
func (p *Planner) swapID(ctx context.Context, tempID, serverID string) error {
	p.mu.Lock()

	if p.tombstones[tempID] {
		delete(p.tombstones, tempID)
		p.pending.Remove(tempID)
		p.mu.Unlock()
		p.log.Info("trip deleted before create completed; deleting server copy", "trip_id", serverID)
		if err := p.remote.Delete(ctx, serverID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			p.log.Error("delete of orphaned server trip failed", "trip_id", serverID, "error", err)
			return err
		}
		return nil
	}

	t := p.find(tempID)
	if t == nil {
		p.pending.Remove(tempID)
		p.mu.Unlock()
		return nil
	}

	// Timers armed while the id was pending would only ever be suppressed or
	// find nothing; drop them.
	p.scheduler.Cancel(tempID)

	next := t.Clone()
	next.ID = serverID
	next.SyncState = domain.SyncSynced
	p.trips, _ = UpdateTrip(p.trips, tempID, func(*domain.Trip) (*domain.Trip, bool) { return next, true })
	if p.currentID == tempID {
		p.currentID = serverID
	}
	dirty := p.revisions[tempID] > 0
	delete(p.revisions, tempID)
	p.revisions[serverID] = 0
	p.pending.Remove(tempID)
	p.mu.Unlock()

	if !dirty {
		return nil
	}
	p.log.Info("saving changes made before id assignment", "trip_id", serverID, "temp_id", tempID)
	if err := p.scheduler.SaveNow(ctx, persist.Command{TripID: serverID, Snapshot: p.snapshotFunc(serverID)}); err != nil {
		return err
	}
	return nil
}

// DeleteTrip removes the trip at once and then deletes it on the server. If
// the server delete fails, the trip and the previous selection are restored.
func (p *Planner) DeleteTrip(ctx context.Context, id string) error {
	p.mu.Lock()
	idx := p.indexOf(id)
	if idx < 0 {
		p.mu.Unlock()
		return fmt.Errorf("planner.Planner.DeleteTrip: trip %s: %w", id, domain.ErrNotFound)
	}

	// A save racing the delete could recreate what we are removing.
	hadSave := p.scheduler.Cancel(id)

	removed := p.trips[idx]
	prevCurrent, prevDay := p.currentID, p.currentDay

	next := make([]*domain.Trip, 0, len(p.trips)-1)
	next = append(next, p.trips[:idx]...)
	next = append(next, p.trips[idx+1:]...)
	p.trips = next
	if p.currentID == id {
		p.currentID = ""
		if len(next) > 0 {
			p.currentID = next[0].ID
		}
		p.currentDay = 1
	}

	switch {
	case p.pending.Has(id):
		// No server resource yet; remove it once the create completes.
		p.tombstones[id] = true
		delete(p.revisions, id)
		p.mu.Unlock()
		return nil
	case removed.SyncState == domain.SyncUnsynced:
		delete(p.revisions, id)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	err := p.remote.Delete(ctx, id)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		p.mu.Lock()
		delete(p.revisions, id)
		p.mu.Unlock()
		return nil
	}

	p.log.Error("trip delete failed; restoring", "trip_id", id, "error", err)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.find(id) == nil {
		restored := make([]*domain.Trip, 0, len(p.trips)+1)
		// Keep trips created since the removal, and put this one back in its slot.
		pos := min(idx, len(p.trips))
		restored = append(restored, p.trips[:pos]...)
		restored = append(restored, removed)
		restored = append(restored, p.trips[pos:]...)
		p.trips = restored
	}
	p.currentID, p.currentDay = prevCurrent, prevDay
	// Edits made before the delete still need to reach the server.
	if hadSave || p.revisions[id] > 0 {
		p.scheduleSave(id)
	}
	return fmt.Errorf("planner.Planner.DeleteTrip: %w", err)
}

// RenameTrip changes a trip's name.
func (p *Planner) RenameTrip(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("planner.Planner.RenameTrip: %w: name is required", domain.ErrValidation)
	}
	return p.mutate("RenameTrip", id, func(t *domain.Trip) error {
		if t.Name == name {
			return errNoChange
		}
		t.Name = name
		return nil
	})
}

// Hydrate replaces the whole collection with records loaded from storage and
// selects the first one. Dates are normalized to "2006-01-02" and absent
// optional fields are defaulted. On error the collection is left unchanged.
func (p *Planner) Hydrate(records []domain.Trip) error {
	trips := make([]*domain.Trip, 0, len(records))
	for i := range records {
		t, err := normalizeRecord(records[i])
		if err != nil {
			return fmt.Errorf("planner.Planner.Hydrate: trip %s: %w", records[i].ID, err)
		}
		trips = append(trips, t)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.trips {
		p.scheduler.Cancel(t.ID)
	}
	p.trips = trips
	p.revisions = make(map[string]int, len(trips))
	p.currentID = ""
	if len(trips) > 0 {
		p.currentID = trips[0].ID
	}
	p.currentDay = 1
	return nil
}

func normalizeRecord(rec domain.Trip) (*domain.Trip, error) {
	t := rec.Clone()
	t.SyncState = domain.SyncSynced
	if t.Destinations == nil {
		t.Destinations = []string{}
	}
	if t.Pool == nil {
		t.Pool = []domain.Place{}
	}
	for i := range t.Pool {
		if t.Pool[i].Status == "" {
			t.Pool[i].Status = domain.PoolAvailable
		}
	}

	if t.Dates != nil {
		start, err := domain.NormalizeDate(t.Dates.Start)
		if err != nil {
			return nil, err
		}
		end, err := domain.NormalizeDate(t.Dates.End)
		if err != nil {
			return nil, err
		}
		if start == "" {
			t.Dates = nil
		} else {
			t.Dates.Start, t.Dates.End = start, end
		}
	}
	if t.Status == "" {
		t.Status = domain.StatusPlanning
		if t.Flexible() {
			t.Status = domain.StatusDreaming
		}
	}

	for i := range t.Days {
		d := &t.Days[i]
		if len(d.Slots) == 0 {
			d.Slots = domain.NewDay(i+1, "").Slots
		}
		for j := range d.Slots {
			s := &d.Slots[j]
			if s.Places == nil {
				s.Places = []domain.PlacedPlace{}
			}
			if s.Ghosts == nil {
				s.Ghosts = []domain.Ghost{}
			}
			if s.QuickEntries == nil {
				s.QuickEntries = []domain.QuickEntry{}
			}
		}
	}
	renumber(t.Days)
	if err := rederiveDates(t); err != nil {
		return nil, err
	}
	return t, nil
}

// GraduateToPlanning turns the current date-flexible trip into a dated one;
// a trip that already has dates is rejected with ErrValidation.
// The day skeleton is rebuilt for the new range with the same destination
// distribution as create. Slot contents carry over by position; places
// placed on days past the new length return to the pool.
func (p *Planner) GraduateToPlanning(startDate, endDate string, allocation map[string]int) error {
	n, err := domain.DaysInclusive(startDate, endDate)
	if err != nil {
		return fmt.Errorf("planner.Planner.GraduateToPlanning: %w", err)
	}
	return p.mutateCurrent("GraduateToPlanning", func(t *domain.Trip) error {
		if !t.Flexible() {
			return fmt.Errorf("%w: trip already has dates", domain.ErrValidation)
		}
		days := buildDays(t.Destinations, n, allocation)
		for i := range t.Days {
			if i < len(days) {
				days[i].Slots = t.Days[i].Slots
				days[i].Lodging = t.Days[i].Lodging
				days[i].Transport = t.Days[i].Transport
				continue
			}
			t.Pool = append(t.Pool, unplaceDay(&t.Days[i])...)
		}
		t.Days = days
		t.Dates = &domain.DateRange{Start: startDate, End: endDate}
		t.Status = domain.StatusPlanning
		renumber(t.Days)
		if err := rederiveDates(t); err != nil {
			return err
		}
		p.currentDay = 1
		return nil
	})
}

func createRequest(t *domain.Trip) domain.CreateRequest {
	c := t.Clone()
	req := domain.CreateRequest{
		Name:          c.Name,
		Destinations:  c.Destinations,
		FlexibleDates: c.Flexible(),
		GroupSize:     c.GroupSize,
		GroupType:     c.GroupType,
		Days:          c.Days,
		Pool:          c.Pool,
		Status:        c.Status,
	}
	if c.Dates != nil {
		req.StartDate = c.Dates.Start
		req.EndDate = c.Dates.End
	} else {
		req.DayCount = len(c.Days)
	}
	return req
}

func cleanDestinations(in []string) []string {
	out := []string{}
	for _, d := range in {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if strings.EqualFold(seen, d) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, d)
		}
	}
	return out
}
