// Package persist schedules writes of trip snapshots to the remote store.
//
// Bursts of mutations to one trip are coalesced into a single partial-update
// write: every Schedule call for a trip id rearms that id's timer, and the
// snapshot is computed only when the timer fires, so the write carries the
// latest state. Different trip ids are independent.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/tripboard/internal/clock"
	"github.com/pkordes/tripboard/internal/domain"
)

// DefaultDelay is the debounce window.
const DefaultDelay = 2 * time.Second

// ErrTransient marks a write failure worth retrying (network error, 5xx).
// Savers wrap it; anything else is treated as permanent.
var ErrTransient = errors.New("transient failure")

// Saver issues a partial-update write for one trip.
type Saver interface {
	Save(ctx context.Context, id string, patch domain.Patch) error
}

// SnapshotFunc computes the patch to send. It is evaluated when the write
// fires, not when it is scheduled. ok is false when the trip no longer exists.
type SnapshotFunc func() (patch domain.Patch, ok bool)

// Command is one request to persist a trip.
type Command struct {
	TripID   string
	Snapshot SnapshotFunc
}

// Options configures a Scheduler. Zero values fall back to defaults.
type Options struct {
	// Delay is the debounce window. Default: DefaultDelay.
	Delay time.Duration

	// MaxRetries is the number of retries after the first failed attempt for
	// transient failures. Zero disables retries.
	MaxRetries uint64

	// RetryBase is the first backoff interval; it doubles per retry.
	// Default: 200ms.
	RetryBase time.Duration

	// WriteTimeout bounds each write including retries. Default: 15s.
	WriteTimeout time.Duration

	Clock   clock.Clock
	Logger  *slog.Logger
	Pending *PendingSet
}

type entry struct {
	cmd   Command
	timer clock.Timer
}

// Scheduler owns one debounce timer per trip id.
// Safe for concurrent use.
type Scheduler struct {
	saver Saver
	opts  Options

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	entries  map[string]*entry
	inflight int           // fired writes still running
	idle     chan struct{} // closed when inflight drops to zero
}

// NewScheduler constructs a Scheduler that writes through saver.
func NewScheduler(saver Saver, opts Options) *Scheduler {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 200 * time.Millisecond
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 15 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Pending == nil {
		opts.Pending = NewPendingSet()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		saver:   saver,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*entry),
	}
}

// Pending returns the pending-id set the scheduler consults.
func (s *Scheduler) Pending() *PendingSet {
	return s.opts.Pending
}

// Schedule arms (or rearms) the debounce timer for cmd.TripID. Any command
// previously scheduled for the same id is discarded without running.
func (s *Scheduler) Schedule(cmd Command) {
	savesScheduled.Inc()

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[cmd.TripID]; ok {
		prev.timer.Stop()
		savesTotal.WithLabelValues(outcomeCoalesced).Inc()
	}
	e := &entry{cmd: cmd}
	e.timer = s.opts.Clock.AfterFunc(s.opts.Delay, func() { s.fire(e) })
	s.entries[cmd.TripID] = e
}

// Cancel drops the scheduled write for id without running it. It reports
// whether a write was scheduled. A write that has already fired is not
// affected.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.entries, id)
	savesTotal.WithLabelValues(outcomeCanceled).Inc()
	return true
}

// Scheduled reports whether a write is waiting for id.
func (s *Scheduler) Scheduled(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// SaveNow runs cmd immediately, bypassing the debounce window, and cancels
// any write already scheduled for the same id.
func (s *Scheduler) SaveNow(ctx context.Context, cmd Command) error {
	s.mu.Lock()
	if e, ok := s.entries[cmd.TripID]; ok {
		e.timer.Stop()
		delete(s.entries, cmd.TripID)
	}
	s.mu.Unlock()

	return s.run(ctx, cmd)
}

// Flush runs every scheduled write now, concurrently, waits for writes whose
// timer already fired, and returns the first error encountered.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	cmds := make([]Command, 0, len(s.entries))
	for id, e := range s.entries {
		e.timer.Stop()
		cmds = append(cmds, e.cmd)
		delete(s.entries, id)
	}
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, cmd := range cmds {
		g.Go(func() error {
			return s.run(gctx, cmd)
		})
	}
	err := g.Wait()

	s.mu.Lock()
	idle := s.idle
	busy := s.inflight > 0
	s.mu.Unlock()
	if busy {
		select {
		case <-idle:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}
	}
	return err
}

// Close stops every scheduled timer without writing and aborts writes in
// flight. Call Flush first to keep scheduled state.
func (s *Scheduler) Close() {
	s.mu.Lock()
	for id, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, id)
	}
	s.mu.Unlock()
	s.cancel()
}

// fire runs when e's timer expires. A superseded entry does nothing.
func (s *Scheduler) fire(e *entry) {
	s.mu.Lock()
	if s.entries[e.cmd.TripID] != e {
		s.mu.Unlock()
		return
	}
	delete(s.entries, e.cmd.TripID)
	if s.inflight == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inflight--
		if s.inflight == 0 {
			close(s.idle)
		}
		s.mu.Unlock()
	}()

	// Failures are logged and counted inside run; nobody is waiting on a
	// debounced write.
	_ = s.run(s.ctx, e.cmd)
}

// run applies the pending and empty-snapshot guards, then writes with retry.
func (s *Scheduler) run(ctx context.Context, cmd Command) error {
	log := s.opts.Logger.With("trip_id", cmd.TripID)

	if s.opts.Pending.Has(cmd.TripID) {
		log.Info("save suppressed", "reason", "trip id pending server assignment")
		savesTotal.WithLabelValues(outcomePending).Inc()
		return nil
	}

	patch, ok := cmd.Snapshot()
	if !ok || patch.IsEmpty() {
		log.Debug("save skipped", "reason", "empty snapshot")
		savesTotal.WithLabelValues(outcomeEmpty).Inc()
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(s.opts.MaxRetries, retry.NewExponential(s.opts.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		saveAttempts.Inc()
		err := s.saver.Save(ctx, cmd.TripID, patch)
		if errors.Is(err, ErrTransient) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		log.Error("save failed", "error", err)
		savesTotal.WithLabelValues(outcomeFailed).Inc()
		return fmt.Errorf("persist.Scheduler.run: %w", err)
	}

	savesTotal.WithLabelValues(outcomeSent).Inc()
	return nil
}
