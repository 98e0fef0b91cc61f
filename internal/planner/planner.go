// Package planner is the trip state engine: an in-memory collection of trips
// mutated synchronously through small user-driven operations, with every
// change persisted asynchronously through a debounced scheduler.
//
// A Planner is the single owner of the collection. Every mutation goes
// through one lock and one update helper, replaces the affected trip with a
// modified clone, and schedules a save for that trip's id.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/tripboard/internal/clock"
	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/persist"
)

// Remote is the persistence contract the planner depends on: create, partial
// save, and delete of one trip.
type Remote interface {
	// Create stores a new trip and returns the server-assigned id.
	Create(ctx context.Context, req domain.CreateRequest) (string, error)

	// Save applies a partial update to an existing trip.
	Save(ctx context.Context, id string, patch domain.Patch) error

	// Delete removes a trip.
	Delete(ctx context.Context, id string) error
}

// Options configures a Planner. Zero values fall back to defaults.
type Options struct {
	// SaveDelay is the debounce window for saves. Default: persist.DefaultDelay.
	SaveDelay time.Duration

	// MaxRetries is the number of retries for transient save failures.
	MaxRetries uint64

	// CreateTimeout bounds background create requests. Default: 30s.
	CreateTimeout time.Duration

	Clock  clock.Clock
	Logger *slog.Logger
}

// Planner owns the trip collection, the current selection, and the
// persistence scheduler. Construct one per session with New and release it
// with Close. Safe for concurrent use; operations are serialized.
type Planner struct {
	remote    Remote
	scheduler *persist.Scheduler
	pending   *persist.PendingSet
	clock     clock.Clock
	log       *slog.Logger
	timeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	trips      []*domain.Trip
	currentID  string
	currentDay int
	// revisions counts mutations per trip id since it was created or loaded.
	revisions map[string]int
	// tombstones holds temporary ids deleted before their create completed.
	tombstones map[string]bool
}

// New constructs a Planner persisting through remote.
func New(remote Remote, opts Options) *Planner {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CreateTimeout <= 0 {
		opts.CreateTimeout = 30 * time.Second
	}

	pending := persist.NewPendingSet()
	ctx, cancel := context.WithCancel(context.Background())
	return &Planner{
		remote: remote,
		scheduler: persist.NewScheduler(remote, persist.Options{
			Delay:      opts.SaveDelay,
			MaxRetries: opts.MaxRetries,
			Clock:      opts.Clock,
			Logger:     opts.Logger,
			Pending:    pending,
		}),
		pending:    pending,
		clock:      opts.Clock,
		log:        opts.Logger,
		timeout:    opts.CreateTimeout,
		ctx:        ctx,
		cancel:     cancel,
		currentDay: 1,
		revisions:  make(map[string]int),
		tombstones: make(map[string]bool),
	}
}

// Close waits for background creates, flushes every scheduled save, and
// stops the scheduler. The Planner must not be used afterwards.
func (p *Planner) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		p.cancel()
		p.scheduler.Close()
		return fmt.Errorf("planner.Planner.Close: %w", ctx.Err())
	}

	err := p.scheduler.Flush(ctx)
	p.scheduler.Close()
	p.cancel()
	if err != nil {
		return fmt.Errorf("planner.Planner.Close: %w", err)
	}
	return nil
}

// ---- selectors -------------------------------------------------------------

// Current returns a copy of the current trip, or false if none is selected.
func (p *Planner) Current() (*domain.Trip, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.find(p.currentID)
	if t == nil {
		return nil, false
	}
	return t.Clone(), true
}

// Trip returns a copy of the trip with the given id.
func (p *Planner) Trip(id string) (*domain.Trip, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.find(id)
	if t == nil {
		return nil, false
	}
	return t.Clone(), true
}

// Trips returns copies of every trip in collection order.
func (p *Planner) Trips() []*domain.Trip {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*domain.Trip, len(p.trips))
	for i, t := range p.trips {
		out[i] = t.Clone()
	}
	return out
}

// CurrentID returns the id of the selected trip, or "".
func (p *Planner) CurrentID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentID
}

// CurrentDay returns the day number being viewed.
func (p *Planner) CurrentDay() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentDay
}

// SelectTrip makes id the current trip and views its first day.
func (p *Planner) SelectTrip(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.find(id) == nil {
		return fmt.Errorf("planner.Planner.SelectTrip: trip %s: %w", id, domain.ErrNotFound)
	}
	p.currentID = id
	p.currentDay = 1
	return nil
}

// SetCurrentDay changes the viewed day of the current trip.
func (p *Planner) SetCurrentDay(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.find(p.currentID)
	if t == nil {
		return fmt.Errorf("planner.Planner.SetCurrentDay: %w", domain.ErrNoCurrentTrip)
	}
	if n < 1 || n > len(t.Days) {
		return fmt.Errorf("planner.Planner.SetCurrentDay: day %d: %w", n, domain.ErrNotFound)
	}
	p.currentDay = n
	return nil
}

// AvailablePool returns the current trip's pool entries with available status.
func (p *Planner) AvailablePool() []domain.Place {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.find(p.currentID)
	if t == nil {
		return []domain.Place{}
	}
	out := []domain.Place{}
	for _, pl := range t.Pool {
		if pl.Status == domain.PoolAvailable {
			out = append(out, pl.Clone())
		}
	}
	return out
}

// AvailablePoolCount returns len(AvailablePool()) without copying.
func (p *Planner) AvailablePoolCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.find(p.currentID)
	if t == nil {
		return 0
	}
	return countAvailable(t.Pool)
}

// IsPending reports whether id is a temporary id awaiting server assignment.
func (p *Planner) IsPending(id string) bool {
	return p.pending.Has(id)
}

// SaveScheduled reports whether a debounced save is waiting for id.
func (p *Planner) SaveScheduled(id string) bool {
	return p.scheduler.Scheduled(id)
}

// ---- internals -------------------------------------------------------------

// errNoChange aborts a mutation without error, write, or revision bump.
var errNoChange = errors.New("no change")

// find returns the trip with the given id. Callers hold p.mu.
func (p *Planner) find(id string) *domain.Trip {
	if id == "" {
		return nil
	}
	for _, t := range p.trips {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (p *Planner) indexOf(id string) int {
	for i, t := range p.trips {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// mutateCurrent applies fn to a clone of the current trip. See mutate.
func (p *Planner) mutateCurrent(op string, fn func(t *domain.Trip) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentID == "" {
		return fmt.Errorf("planner.Planner.%s: %w", op, domain.ErrNoCurrentTrip)
	}
	return p.mutateLocked(op, p.currentID, fn)
}

// mutate applies fn to a clone of trip id.
func (p *Planner) mutate(op, id string, fn func(t *domain.Trip) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mutateLocked(op, id, fn)
}

// mutateLocked swaps in the modified clone, bumps the trip's revision, and
// schedules a save. If fn returns errNoChange the collection is untouched.
func (p *Planner) mutateLocked(op, id string, fn func(t *domain.Trip) error) error {
	var fnErr error
	trips, changed := UpdateTrip(p.trips, id, func(cur *domain.Trip) (*domain.Trip, bool) {
		next := cur.Clone()
		if err := fn(next); err != nil {
			fnErr = err
			return nil, false
		}
		next.UpdatedAt = p.clock.Now()
		return next, true
	})
	if fnErr != nil {
		if errors.Is(fnErr, errNoChange) {
			return nil
		}
		return fmt.Errorf("planner.Planner.%s: %w", op, fnErr)
	}
	if !changed {
		return fmt.Errorf("planner.Planner.%s: trip %s: %w", op, id, domain.ErrNotFound)
	}
	p.trips = trips
	p.revisions[id]++
	p.scheduleSave(id)
	return nil
}

// scheduleSave queues a debounced write for id. Callers hold p.mu.
func (p *Planner) scheduleSave(id string) {
	p.scheduler.Schedule(persist.Command{TripID: id, Snapshot: p.snapshotFunc(id)})
}

// snapshotFunc returns a closure that reads trip id's state when called.
// A trip that no longer exists, or has no server id yet, yields ok=false.
func (p *Planner) snapshotFunc(id string) persist.SnapshotFunc {
	return func() (domain.Patch, bool) {
		if IsTempID(id) {
			return domain.Patch{}, false
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		t := p.find(id)
		if t == nil || t.SyncState != domain.SyncSynced {
			return domain.Patch{}, false
		}
		return t.Snapshot(), true
	}
}

func countAvailable(pool []domain.Place) int {
	n := 0
	for _, pl := range pool {
		if pl.Status == domain.PoolAvailable {
			n++
		}
	}
	return n
}
