package planner_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripboard/internal/clock"
	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/persist"
	"github.com/pkordes/tripboard/internal/planner"
)

// ---- mock remote -----------------------------------------------------------

type saveCall struct {
	id    string
	patch domain.Patch
}

// mockRemote is a test double for planner.Remote. Nil function fields fall
// back to success; create mints "srv-1", "srv-2", ...
type mockRemote struct {
	create func(ctx context.Context, req domain.CreateRequest) (string, error)
	save   func(ctx context.Context, id string, patch domain.Patch) error
	delete func(ctx context.Context, id string) error

	mu      sync.Mutex
	creates []domain.CreateRequest
	saves   []saveCall
	deletes []string
}

func (m *mockRemote) Create(ctx context.Context, req domain.CreateRequest) (string, error) {
	m.mu.Lock()
	m.creates = append(m.creates, req)
	n := len(m.creates)
	m.mu.Unlock()
	if m.create != nil {
		return m.create(ctx, req)
	}
	return fmt.Sprintf("srv-%d", n), nil
}

func (m *mockRemote) Save(ctx context.Context, id string, patch domain.Patch) error {
	m.mu.Lock()
	m.saves = append(m.saves, saveCall{id: id, patch: patch})
	m.mu.Unlock()
	if m.save != nil {
		return m.save(ctx, id, patch)
	}
	return nil
}

func (m *mockRemote) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.deletes = append(m.deletes, id)
	m.mu.Unlock()
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return nil
}

func (m *mockRemote) Creates() []domain.CreateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CreateRequest(nil), m.creates...)
}

func (m *mockRemote) Saves() []saveCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]saveCall(nil), m.saves...)
}

func (m *mockRemote) Deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}

// compile-time check: mockRemote must satisfy planner.Remote.
var _ planner.Remote = (*mockRemote)(nil)

// ---- helpers ---------------------------------------------------------------

const saveDelay = 2 * time.Second

func newPlanner(t *testing.T, remote *mockRemote) (*planner.Planner, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC))
	p := planner.New(remote, planner.Options{
		SaveDelay: saveDelay,
		Clock:     fake,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = p.Close(ctx)
	})
	return p, fake
}

// createSynced creates a trip and waits for its server id.
func createSynced(t *testing.T, p *planner.Planner, in planner.CreateInput) string {
	t.Helper()
	id, err := p.CreateTripAsync(context.Background(), in)
	require.NoError(t, err)
	require.False(t, planner.IsTempID(id))
	return id
}

func datedInput(start, end string, destinations ...string) planner.CreateInput {
	return planner.CreateInput{
		Name:         "Summer",
		Destinations: destinations,
		StartDate:    start,
		EndDate:      end,
	}
}

func flexibleInput(days int, destinations ...string) planner.CreateInput {
	return planner.CreateInput{
		Name:         "Someday",
		Destinations: destinations,
		DayCount:     days,
	}
}

func current(t *testing.T, p *planner.Planner) *domain.Trip {
	t.Helper()
	trip, ok := p.Current()
	require.True(t, ok, "expected a current trip")
	return trip
}

func dayDestinations(trip *domain.Trip) []string {
	out := make([]string, len(trip.Days))
	for i, d := range trip.Days {
		out[i] = d.Destination
	}
	return out
}

func dayDates(trip *domain.Trip) []string {
	out := make([]string, len(trip.Days))
	for i, d := range trip.Days {
		out[i] = d.Date
	}
	return out
}

// assertNumbered checks day numbers and placed back-references are
// consistent with position.
func assertNumbered(t *testing.T, trip *domain.Trip) {
	t.Helper()
	for i, d := range trip.Days {
		assert.Equal(t, i+1, d.DayNumber, "day at index %d", i)
		for _, s := range d.Slots {
			for _, pp := range s.Places {
				assert.Equal(t, domain.Placement{Day: i + 1, Slot: s.ID}, pp.PlacedIn, "placed %s", pp.ID)
			}
		}
	}
}

// ---- CreateTrip ------------------------------------------------------------

func TestCreateTripAsync_DatedTrip_BuildsSkeletonWithAllocation(t *testing.T) {
	remote := &mockRemote{}
	p, _ := newPlanner(t, remote)

	in := datedInput("2024-06-01", "2024-06-03", "Rome", "Florence")
	in.Allocation = map[string]int{"Rome": 2, "Florence": 1}
	id := createSynced(t, p, in)

	assert.Equal(t, "srv-1", id)
	assert.Equal(t, id, p.CurrentID())
	assert.Equal(t, 1, p.CurrentDay())
	assert.False(t, p.IsPending(id))

	trip := current(t, p)
	assert.Equal(t, []string{"Rome", "Rome", "Florence"}, dayDestinations(trip))
	assert.Equal(t, []string{"2024-06-01", "2024-06-02", "2024-06-03"}, dayDates(trip))
	assert.Equal(t, "Saturday", trip.Days[0].DayOfWeek)
	assert.Equal(t, domain.StatusPlanning, trip.Status)
	assert.Equal(t, domain.SyncSynced, trip.SyncState)
	assertNumbered(t, trip)
	for _, d := range trip.Days {
		require.Len(t, d.Slots, len(domain.SlotTemplate))
		for _, s := range d.Slots {
			assert.NotNil(t, s.Places)
			assert.NotNil(t, s.Ghosts)
			assert.NotNil(t, s.QuickEntries)
		}
	}

	creates := remote.Creates()
	require.Len(t, creates, 1)
	assert.Equal(t, "2024-06-01", creates[0].StartDate)
	assert.Equal(t, "2024-06-03", creates[0].EndDate)
	assert.False(t, creates[0].FlexibleDates)
	assert.Len(t, creates[0].Days, 3)
	assert.Empty(t, remote.Saves(), "an unmodified trip needs no save after create")
}

func TestCreateTripAsync_FlexibleTrip_SpreadsDestinationsEvenly(t *testing.T) {
	p, _ := newPlanner(t, &mockRemote{})

	createSynced(t, p, flexibleInput(4, "Lisbon", "Porto"))

	trip := current(t, p)
	assert.True(t, trip.Flexible())
	assert.Equal(t, domain.StatusDreaming, trip.Status)
	assert.Equal(t, []string{"Lisbon", "Lisbon", "Porto", "Porto"}, dayDestinations(trip))
	assert.Equal(t, []string{"", "", "", ""}, dayDates(trip))
}

func TestCreateTripAsync_AllocationShortfallGoesToLastDestination(t *testing.T) {
	p, _ := newPlanner(t, &mockRemote{})

	in := flexibleInput(4, "Rome", "Florence")
	in.Allocation = map[string]int{"Rome": 1, "Florence": 1}
	createSynced(t, p, in)

	assert.Equal(t, []string{"Rome", "Florence", "Florence", "Florence"}, dayDestinations(current(t, p)))
}

func TestCreateTripAsync_DedupesDestinations(t *testing.T) {
	p, _ := newPlanner(t, &mockRemote{})

	createSynced(t, p, flexibleInput(2, " Rome ", "rome", "", "Naples"))

	assert.Equal(t, []string{"Rome", "Naples"}, current(t, p).Destinations)
}

func TestCreateTripAsync_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   planner.CreateInput
	}{
		{"missing name", planner.CreateInput{Destinations: []string{"Rome"}, DayCount: 1}},
		{"no destinations", planner.CreateInput{Name: "x", Destinations: []string{" "}, DayCount: 1}},
		{"flexible without day count", planner.CreateInput{Name: "x", Destinations: []string{"Rome"}}},
		{"end before start", datedInput("2024-06-05", "2024-06-01", "Rome")},
		{"bad date", datedInput("06/01/2024", "", "Rome")},
		{"bad status", planner.CreateInput{Name: "x", Destinations: []string{"Rome"}, DayCount: 1, Status: "someday"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			remote := &mockRemote{}
			p, _ := newPlanner(t, remote)

			_, err := p.CreateTripAsync(context.Background(), tc.in)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, p.Trips())
			assert.Empty(t, remote.Creates())
		})
	}
}

// ---- optimistic id swap ----------------------------------------------------

func TestCreateTrip_EditsWhilePending_WrittenOnceUnderServerID(t *testing.T) {
	release := make(chan struct{})
	remote := &mockRemote{
		create: func(ctx context.Context, _ domain.CreateRequest) (string, error) {
			select {
			case <-release:
				return "srv-42", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	}
	p, fake := newPlanner(t, remote)

	tempID, err := p.CreateTrip(flexibleInput(2, "Rome"))
	require.NoError(t, err)
	require.True(t, planner.IsTempID(tempID))
	assert.True(t, p.IsPending(tempID))
	assert.Equal(t, tempID, p.CurrentID())

	require.NoError(t, p.AppendDestination("Naples"))
	require.NoError(t, p.RenameTrip(tempID, "Italy"))
	_, err = p.AddToPool(domain.Place{ID: "p1", Name: "Da Michele", Type: domain.PlaceRestaurant, Location: "Naples"})
	require.NoError(t, err)
	_, err = p.PlaceItem("p1", 3, domain.SlotLunch)
	require.NoError(t, err)

	// The debounced write fires while the id is still temporary.
	fake.Advance(saveDelay)
	assert.Empty(t, remote.Saves(), "nothing may be written under a temporary id")

	close(release)
	require.Eventually(t, func() bool { return len(remote.Saves()) == 1 }, 2*time.Second, 5*time.Millisecond)

	saves := remote.Saves()
	assert.Equal(t, "srv-42", saves[0].id)
	require.NotNil(t, saves[0].patch.Name)
	assert.Equal(t, "Italy", *saves[0].patch.Name)
	require.NotNil(t, saves[0].patch.Destinations)
	assert.Equal(t, []string{"Rome", "Naples"}, *saves[0].patch.Destinations)
	require.NotNil(t, saves[0].patch.Days)
	days := *saves[0].patch.Days
	require.Len(t, days, 3)
	lunch := days[2].Slot(domain.SlotLunch).Places
	require.Len(t, lunch, 1, "the placement made while pending is in the write")
	assert.Equal(t, "p1", lunch[0].ID)

	assert.Equal(t, "srv-42", p.CurrentID())
	assert.False(t, p.IsPending(tempID))
	_, ok := p.Trip(tempID)
	assert.False(t, ok)

	fake.Advance(10 * saveDelay)
	for _, s := range remote.Saves() {
		assert.NotEqual(t, tempID, s.id)
	}
	assert.Len(t, remote.Saves(), 1)
}

func TestCreateTrip_NoEditsWhilePending_NoWriteAfterSwap(t *testing.T) {
	remote := &mockRemote{}
	p, fake := newPlanner(t, remote)

	_, err := p.CreateTrip(flexibleInput(1, "Rome"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return p.CurrentID() == "srv-1" }, 2*time.Second, 5*time.Millisecond)

	fake.Advance(10 * saveDelay)
	assert.Empty(t, remote.Saves())
}

func TestCreateTripAsync_Failure_KeepsLocalUnsyncedCopy(t *testing.T) {
	boom := errors.New("connection refused")
	fail := true
	remote := &mockRemote{}
	remote.create = func(_ context.Context, _ domain.CreateRequest) (string, error) {
		if fail {
			return "", boom
		}
		return "srv-9", nil
	}
	p, fake := newPlanner(t, remote)

	tempID, err := p.CreateTripAsync(context.Background(), flexibleInput(1, "Rome"))
	require.ErrorIs(t, err, boom)
	require.True(t, planner.IsTempID(tempID))

	trip, ok := p.Trip(tempID)
	require.True(t, ok, "a failed create keeps the local trip")
	assert.Equal(t, domain.SyncUnsynced, trip.SyncState)
	assert.False(t, p.IsPending(tempID))

	// Local edits keep working but are never written under the temp id.
	require.NoError(t, p.AppendDestination("Naples"))
	fake.Advance(saveDelay)
	assert.Empty(t, remote.Saves())

	fail = false
	id, err := p.RetrySync(context.Background(), tempID)
	require.NoError(t, err)
	assert.Equal(t, "srv-9", id)
	assert.Equal(t, "srv-9", p.CurrentID())

	creates := remote.Creates()
	require.Len(t, creates, 2)
	assert.Equal(t, []string{"Rome", "Naples"}, creates[1].Destinations, "retry sends the current state")
	assert.Empty(t, remote.Saves(), "the create itself carries the edits")
}

func TestRetrySync_SyncedTrip_IsNoop(t *testing.T) {
	remote := &mockRemote{}
	p, _ := newPlanner(t, remote)
	id := createSynced(t, p, flexibleInput(1, "Rome"))

	got, err := p.RetrySync(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Len(t, remote.Creates(), 1)
}

// ---- debounce --------------------------------------------------------------

func TestMutations_BurstCoalescesIntoOneWrite(t *testing.T) {
	remote := &mockRemote{}
	p, fake := newPlanner(t, remote)
	id := createSynced(t, p, flexibleInput(1, "Rome"))

	for i := 1; i <= 5; i++ {
		require.NoError(t, p.RenameTrip(id, fmt.Sprintf("Rome v%d", i)))
		fake.Advance(time.Second)
	}
	assert.Empty(t, remote.Saves())
	assert.True(t, p.SaveScheduled(id))

	fake.Advance(saveDelay)

	saves := remote.Saves()
	require.Len(t, saves, 1)
	assert.Equal(t, id, saves[0].id)
	assert.Equal(t, "Rome v5", *saves[0].patch.Name)
	assert.False(t, p.SaveScheduled(id))
}

func TestMutations_NoChange_SchedulesNothing(t *testing.T) {
	p, _ := newPlanner(t, &mockRemote{})
	id := createSynced(t, p, flexibleInput(1, "Rome"))

	require.NoError(t, p.RenameTrip(id, "Someday"))

	assert.False(t, p.SaveScheduled(id))
}

func TestMutations_TransientSaveFailureIsRetried(t *testing.T) {
	attempts := 0
	remote := &mockRemote{
		save: func(_ context.Context, _ string, _ domain.Patch) error {
			attempts++
			if attempts < 3 {
				return fmt.Errorf("502: %w", persist.ErrTransient)
			}
			return nil
		},
	}
	fake := clock.NewFake(time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC))
	p := planner.New(remote, planner.Options{SaveDelay: saveDelay, MaxRetries: 3, Clock: fake})
	id := createSynced(t, p, flexibleInput(1, "Rome"))

	require.NoError(t, p.RenameTrip(id, "Roma"))
	require.NoError(t, p.Close(context.Background()))

	assert.Equal(t, 3, attempts)
}

func TestClose_FlushesScheduledWrites(t *testing.T) {
	remote := &mockRemote{}
	fake := clock.NewFake(time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC))
	p := planner.New(remote, planner.Options{SaveDelay: saveDelay, Clock: fake})
	a := createSynced(t, p, flexibleInput(1, "Rome"))
	b := createSynced(t, p, flexibleInput(1, "Oslo"))
	require.NoError(t, p.RenameTrip(a, "A"))
	require.NoError(t, p.RenameTrip(b, "B"))

	require.NoError(t, p.Close(context.Background()))

	ids := []string{}
	for _, s := range remote.Saves() {
		ids = append(ids, s.id)
	}
	assert.ElementsMatch(t, []string{a, b}, ids)
}

// ---- DeleteTrip ------------------------------------------------------------

func TestCreateTrip_FailureAfterPendingEdits_NeverWritesTempID(t *testing.T) {
	release := make(chan struct{})
	remote := &mockRemote{
		create: func(_ context.Context, _ domain.CreateRequest) (string, error) {
			<-release
			return "", errors.New("connection reset")
		},
	}
	fake := clock.NewFake(time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC))
	p := planner.New(remote, planner.Options{SaveDelay: saveDelay, Clock: fake})
	tempID, err := p.CreateTrip(flexibleInput(1, "Rome"))
	require.NoError(t, err)
	require.NoError(t, p.RenameTrip(tempID, "Italy"))
	require.True(t, p.SaveScheduled(tempID))

	close(release)
	require.Eventually(t, func() bool { return !p.IsPending(tempID) }, 2*time.Second, 5*time.Millisecond)

	trip, ok := p.Trip(tempID)
	require.True(t, ok)
	assert.Equal(t, domain.SyncUnsynced, trip.SyncState, "the trip is flagged by the time it leaves the pending set")

	fake.Advance(10 * saveDelay)
	require.NoError(t, p.Close(context.Background()))
	assert.Empty(t, remote.Saves())
}

func TestDeleteTrip_Success_SelectsFirstRemaining(t *testing.T) {
	remote := &mockRemote{}
	p, fake := newPlanner(t, remote)
	a := createSynced(t, p, flexibleInput(1, "Rome"))
	b := createSynced(t, p, flexibleInput(1, "Oslo"))
	require.NoError(t, p.RenameTrip(b, "pending edit"))

	require.NoError(t, p.DeleteTrip(context.Background(), b))

	assert.Equal(t, []string{b}, remote.Deletes())
	assert.Equal(t, a, p.CurrentID())
	assert.Len(t, p.Trips(), 1)

	fake.Advance(saveDelay)
	assert.Empty(t, remote.Saves(), "a deleted trip's scheduled write is dropped")
}

func TestDeleteTrip_ServerFailure_RestoresTripAndSelection(t *testing.T) {
	remote := &mockRemote{
		delete: func(_ context.Context, _ string) error { return errors.New("503") },
	}
	p, _ := newPlanner(t, remote)
	a := createSynced(t, p, flexibleInput(3, "Rome"))
	b := createSynced(t, p, flexibleInput(1, "Oslo"))
	require.NoError(t, p.SelectTrip(a))
	require.NoError(t, p.SetCurrentDay(3))

	err := p.DeleteTrip(context.Background(), a)

	require.Error(t, err)
	trips := p.Trips()
	require.Len(t, trips, 2)
	assert.Equal(t, a, trips[0].ID, "restored at its original position")
	assert.Equal(t, b, trips[1].ID)
	assert.Equal(t, a, p.CurrentID())
	assert.Equal(t, 3, p.CurrentDay())
}

func TestDeleteTrip_ServerFailure_KeepsEditsMadeBeforeDelete(t *testing.T) {
	remote := &mockRemote{
		delete: func(_ context.Context, _ string) error { return errors.New("503") },
	}
	p, fake := newPlanner(t, remote)
	id := createSynced(t, p, flexibleInput(1, "Rome"))
	require.NoError(t, p.RenameTrip(id, "edited before delete"))

	require.Error(t, p.DeleteTrip(context.Background(), id))
	assert.True(t, p.SaveScheduled(id), "the cancelled write is re-armed")

	fake.Advance(20 * time.Second)

	saves := remote.Saves()
	require.Len(t, saves, 1)
	assert.Equal(t, id, saves[0].id)
	require.NotNil(t, saves[0].patch.Name)
	assert.Equal(t, "edited before delete", *saves[0].patch.Name)
}

func TestDeleteTrip_ServerNotFound_TreatedAsDeleted(t *testing.T) {
	remote := &mockRemote{
		delete: func(_ context.Context, _ string) error { return domain.ErrNotFound },
	}
	p, _ := newPlanner(t, remote)
	id := createSynced(t, p, flexibleInput(1, "Rome"))

	require.NoError(t, p.DeleteTrip(context.Background(), id))

	assert.Empty(t, p.Trips())
	assert.Empty(t, p.CurrentID())
}

func TestDeleteTrip_WhileCreatePending_DeletesServerCopyAfterCreate(t *testing.T) {
	release := make(chan struct{})
	remote := &mockRemote{
		create: func(_ context.Context, _ domain.CreateRequest) (string, error) {
			<-release
			return "srv-7", nil
		},
	}
	p, _ := newPlanner(t, remote)
	tempID, err := p.CreateTrip(flexibleInput(1, "Rome"))
	require.NoError(t, err)

	require.NoError(t, p.DeleteTrip(context.Background(), tempID))
	assert.Empty(t, p.Trips())
	assert.Empty(t, remote.Deletes(), "no network call for an id the server never issued")

	close(release)
	require.Eventually(t, func() bool { return len(remote.Deletes()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"srv-7"}, remote.Deletes())
	assert.Empty(t, p.Trips())
}

func TestDeleteTrip_UnknownID(t *testing.T) {
	p, _ := newPlanner(t, &mockRemote{})

	err := p.DeleteTrip(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- selection & hydrate ---------------------------------------------------

func TestNoCurrentTrip(t *testing.T) {
	p, _ := newPlanner(t, &mockRemote{})

	assert.ErrorIs(t, p.InsertDay(planner.After, 1), domain.ErrNoCurrentTrip)
	_, ok := p.Current()
	assert.False(t, ok)
	assert.Empty(t, p.AvailablePool())
	assert.Zero(t, p.AvailablePoolCount())
}

func TestSetCurrentDay_OutOfRange(t *testing.T) {
	p, _ := newPlanner(t, &mockRemote{})
	createSynced(t, p, flexibleInput(2, "Rome"))

	assert.ErrorIs(t, p.SetCurrentDay(3), domain.ErrNotFound)
	assert.ErrorIs(t, p.SetCurrentDay(0), domain.ErrNotFound)
	require.NoError(t, p.SetCurrentDay(2))
	assert.Equal(t, 2, p.CurrentDay())
}

func TestHydrate_NormalizesStoredRecords(t *testing.T) {
	remote := &mockRemote{}
	p, fake := newPlanner(t, remote)

	err := p.Hydrate([]domain.Trip{
		{
			ID:           "a",
			Name:         "Rome",
			Destinations: []string{"Rome"},
			Dates:        &domain.DateRange{Start: "2024-06-01T00:00:00.000Z", End: "2024-06-09T00:00:00Z"},
			Days: []domain.Day{
				{DayNumber: 4, Destination: "Rome"},
				{DayNumber: 9, Destination: "Rome"},
			},
			Pool: []domain.Place{{ID: "p1", Name: "Roscioli"}},
		},
		{ID: "b", Name: "Oslo"},
	})
	require.NoError(t, err)

	assert.Equal(t, "a", p.CurrentID())
	a := current(t, p)
	assert.Equal(t, domain.DateRange{Start: "2024-06-01", End: "2024-06-02"}, *a.Dates)
	assert.Equal(t, []string{"2024-06-01", "2024-06-02"}, dayDates(a))
	assert.Equal(t, "Sunday", a.Days[1].DayOfWeek)
	assert.Len(t, a.Days[0].Slots, len(domain.SlotTemplate))
	assert.Equal(t, domain.PoolAvailable, a.Pool[0].Status)
	assert.Equal(t, domain.StatusPlanning, a.Status)
	assert.Equal(t, domain.SyncSynced, a.SyncState)
	assertNumbered(t, a)

	b, ok := p.Trip("b")
	require.True(t, ok)
	assert.Equal(t, domain.StatusDreaming, b.Status)
	assert.NotNil(t, b.Pool)
	assert.NotNil(t, b.Destinations)

	fake.Advance(saveDelay)
	assert.Empty(t, remote.Saves(), "loading is not an edit")
}

func TestHydrate_BadDate_LeavesCollectionUnchanged(t *testing.T) {
	p, _ := newPlanner(t, &mockRemote{})
	id := createSynced(t, p, flexibleInput(1, "Rome"))

	err := p.Hydrate([]domain.Trip{{ID: "x", Dates: &domain.DateRange{Start: "June 1st"}}})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, id, p.CurrentID())
}

// ---- GraduateToPlanning ----------------------------------------------------

func TestGraduateToPlanning_CarriesSlotsAndReturnsOverflowToPool(t *testing.T) {
	p, _ := newPlanner(t, &mockRemote{})
	createSynced(t, p, flexibleInput(3, "Rome"))
	_, err := p.AddToPool(
		domain.Place{ID: "p1", Name: "Roscioli", Type: domain.PlaceRestaurant, Location: "Rome"},
		domain.Place{ID: "p2", Name: "Pantheon", Type: domain.PlaceMuseum, Location: "Rome"},
	)
	require.NoError(t, err)
	_, err = p.PlaceItem("p1", 1, domain.SlotLunch)
	require.NoError(t, err)
	_, err = p.PlaceItem("p2", 3, domain.SlotMorning)
	require.NoError(t, err)
	require.NoError(t, p.SetCurrentDay(3))

	require.NoError(t, p.GraduateToPlanning("2024-09-10", "2024-09-11", nil))

	trip := current(t, p)
	assert.Equal(t, domain.StatusPlanning, trip.Status)
	assert.Equal(t, &domain.DateRange{Start: "2024-09-10", End: "2024-09-11"}, trip.Dates)
	assert.Equal(t, []string{"2024-09-10", "2024-09-11"}, dayDates(trip))
	require.Len(t, trip.Days[0].Slot(domain.SlotLunch).Places, 1)
	assert.Equal(t, "p1", trip.Days[0].Slot(domain.SlotLunch).Places[0].ID)
	assert.Len(t, trip.Pool, 3, "the day-3 placement returns to the pool")
	assert.Equal(t, 1, p.CurrentDay())
	assertNumbered(t, trip)
}

func TestGraduateToPlanning_InvalidRange(t *testing.T) {
	p, _ := newPlanner(t, &mockRemote{})
	createSynced(t, p, flexibleInput(1, "Rome"))

	err := p.GraduateToPlanning("2024-09-10", "2024-09-01", nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, current(t, p).Flexible())
}

func TestGraduateToPlanning_DatedTripRejected(t *testing.T) {
	p, _ := newPlanner(t, &mockRemote{})
	id := createSynced(t, p, datedInput("2024-06-01", "2024-06-03", "Rome"))

	err := p.GraduateToPlanning("2024-09-10", "2024-09-11", nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
	trip := current(t, p)
	assert.Equal(t, &domain.DateRange{Start: "2024-06-01", End: "2024-06-03"}, trip.Dates)
	assert.Len(t, trip.Days, 3)
	assert.False(t, p.SaveScheduled(id))
}

func TestIsTempID(t *testing.T) {
	assert.True(t, planner.IsTempID("temp-1717000000000-ab12"))
	assert.False(t, planner.IsTempID("temp-"))
	assert.False(t, planner.IsTempID("0b9e3c1e-2f5a-4c0e-9e1c-1f7f3a1d2e4b"))
}
