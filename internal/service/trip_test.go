package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/repo"
	"github.com/pkordes/tripboard/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
type mockTripRepo struct {
	create  func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID func(ctx context.Context, id string) (domain.Trip, error)
	list    func(ctx context.Context) ([]domain.Trip, error)
	patch   func(ctx context.Context, id string, p domain.Patch) (domain.Trip, error)
	delete  func(ctx context.Context, id string) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	return m.list(ctx)
}
func (m *mockTripRepo) Patch(ctx context.Context, id string, p domain.Patch) (domain.Trip, error) {
	return m.patch(ctx, id, p)
}
func (m *mockTripRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// ---- helpers ---------------------------------------------------------------

func validRequest() domain.CreateRequest {
	return domain.CreateRequest{
		Name:         "Summer in Rome",
		Destinations: []string{"Rome"},
		StartDate:    "2025-06-01",
		EndDate:      "2025-06-03",
	}
}

// echoRepo returns a repo that echoes what it receives.
func echoRepo() *mockTripRepo {
	return &mockTripRepo{
		create: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			t.ID = "0b9e3c1e-2f5a-4c0e-9e1c-1f7f3a1d2e4b"
			return t, nil
		},
		patch: func(_ context.Context, id string, p domain.Patch) (domain.Trip, error) {
			t := domain.Trip{ID: id}
			if p.Name != nil {
				t.Name = *p.Name
			}
			return t, nil
		},
	}
}

// ---- Create tests ----------------------------------------------------------

func TestTripService_Create_Dated_FillsSkeleton(t *testing.T) {
	svc := service.NewTripService(echoRepo())

	got, err := svc.Create(context.Background(), validRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	require.Len(t, got.Days, 3)
	assert.Equal(t, 3, got.Days[2].DayNumber)
	assert.Len(t, got.Days[0].Slots, len(domain.SlotTemplate))
	assert.Equal(t, &domain.DateRange{Start: "2025-06-01", End: "2025-06-03"}, got.Dates)
	assert.Equal(t, domain.StatusPlanning, got.Status)
}

func TestTripService_Create_Flexible(t *testing.T) {
	svc := service.NewTripService(echoRepo())

	req := validRequest()
	req.StartDate, req.EndDate = "", ""
	req.FlexibleDates = true
	req.DayCount = 5

	got, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Nil(t, got.Dates)
	assert.Len(t, got.Days, 5)
	assert.Equal(t, domain.StatusDreaming, got.Status)
}

func TestTripService_Create_KeepsClientDays(t *testing.T) {
	svc := service.NewTripService(echoRepo())

	req := validRequest()
	req.Days = []domain.Day{domain.NewDay(1, "Rome"), domain.NewDay(2, "Rome"), domain.NewDay(3, "Florence")}

	got, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "Florence", got.Days[2].Destination)
}

func TestTripService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *domain.CreateRequest)
	}{
		{"missing name", func(r *domain.CreateRequest) { r.Name = "   " }},
		{"no destinations", func(r *domain.CreateRequest) { r.Destinations = nil }},
		{"end before start", func(r *domain.CreateRequest) { r.EndDate = "2025-05-01" }},
		{"bad date", func(r *domain.CreateRequest) { r.StartDate = "June 1" }},
		{"day count mismatch", func(r *domain.CreateRequest) { r.Days = []domain.Day{domain.NewDay(1, "Rome")} }},
		{"gap in numbering", func(r *domain.CreateRequest) {
			r.Days = []domain.Day{domain.NewDay(1, ""), domain.NewDay(3, ""), domain.NewDay(2, "")}
		}},
		{"flexible without days", func(r *domain.CreateRequest) { r.StartDate, r.FlexibleDates = "", true }},
		{"unknown status", func(r *domain.CreateRequest) { r.Status = "archived" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			svc := service.NewTripService(&mockTripRepo{
				create: func(_ context.Context, tr domain.Trip) (domain.Trip, error) {
					called = true
					return tr, nil
				},
			})
			req := validRequest()
			tc.mutate(&req)

			_, err := svc.Create(context.Background(), req)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.False(t, called, "invalid requests never reach the repo")
		})
	}
}

func TestTripService_Create_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	svc := service.NewTripService(&mockTripRepo{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, repoErr
		},
	})

	_, err := svc.Create(context.Background(), validRequest())

	assert.ErrorIs(t, err, repoErr)
}

// ---- GetByID & List --------------------------------------------------------

func TestTripService_GetByID_NotFound(t *testing.T) {
	svc := service.NewTripService(&mockTripRepo{
		getByID: func(_ context.Context, _ string) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	})

	_, err := svc.GetByID(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_List_Empty(t *testing.T) {
	svc := service.NewTripService(&mockTripRepo{
		list: func(_ context.Context) ([]domain.Trip, error) { return nil, nil },
	})

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ---- Save ------------------------------------------------------------------

func TestTripService_Save_Valid(t *testing.T) {
	svc := service.NewTripService(echoRepo())
	name := "Roman Holiday"

	got, err := svc.Save(context.Background(), "id-1", domain.Patch{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
}

func TestTripService_Save_Validation(t *testing.T) {
	blank := " "
	bogus := domain.Status("archived")
	start, end := "2025-06-05", "2025-06-01"
	noDays := []domain.Day{}
	badDays := []domain.Day{domain.NewDay(2, "")}

	tests := []struct {
		name  string
		patch domain.Patch
	}{
		{"empty", domain.Patch{}},
		{"blank name", domain.Patch{Name: &blank}},
		{"unknown status", domain.Patch{Status: &bogus}},
		{"dates out of order", domain.Patch{StartDate: &start, EndDate: &end}},
		{"no days", domain.Patch{Days: &noDays}},
		{"misnumbered days", domain.Patch{Days: &badDays}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := service.NewTripService(echoRepo())

			_, err := svc.Save(context.Background(), "id-1", tc.patch)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestTripService_Save_NotFound(t *testing.T) {
	svc := service.NewTripService(&mockTripRepo{
		patch: func(_ context.Context, _ string, _ domain.Patch) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	})
	name := "x"

	_, err := svc.Save(context.Background(), "id-1", domain.Patch{Name: &name})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Delete ----------------------------------------------------------------

func TestTripService_Delete(t *testing.T) {
	var got string
	svc := service.NewTripService(&mockTripRepo{
		delete: func(_ context.Context, id string) error {
			got = id
			return nil
		},
	})

	require.NoError(t, svc.Delete(context.Background(), "id-1"))
	assert.Equal(t, "id-1", got)
}

func TestTripService_Delete_NotFound(t *testing.T) {
	svc := service.NewTripService(&mockTripRepo{
		delete: func(_ context.Context, _ string) error { return domain.ErrNotFound },
	})

	assert.ErrorIs(t, svc.Delete(context.Background(), "id-1"), domain.ErrNotFound)
}
