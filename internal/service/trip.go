// Package service contains the server-side business rules for trip documents.
// Services validate inputs and orchestrate repo calls; no SQL lives here.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/repo"
)

// TripService implements business logic for trip operations.
type TripService struct {
	repo repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo) *TripService {
	return &TripService{repo: r}
}

// Create validates a create request and persists the new trip.
//
// A dated request must carry one day per calendar day of its range; a
// flexible one needs DayCount or explicit days. Missing days are filled with
// blank skeleton days.
func (s *TripService) Create(ctx context.Context, req domain.CreateRequest) (domain.Trip, error) {
	trip, err := tripFromRequest(req)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns all trips. Never nil.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// Save validates and applies a partial update.
func (s *TripService) Save(ctx context.Context, id string, p domain.Patch) (domain.Trip, error) {
	if err := validatePatch(p); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Save: %w", err)
	}

	trip, err := s.repo.Patch(ctx, id, p)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Save: %w", err)
	}
	return trip, nil
}

// Delete removes a trip by ID.
func (s *TripService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

func tripFromRequest(req domain.CreateRequest) (domain.Trip, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Trip{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if len(req.Destinations) == 0 {
		return domain.Trip{}, fmt.Errorf("%w: at least one destination is required", domain.ErrValidation)
	}

	trip := domain.Trip{
		Name:         name,
		Destinations: req.Destinations,
		GroupSize:    req.GroupSize,
		GroupType:    req.GroupType,
		Status:       req.Status,
		Days:         req.Days,
		Pool:         req.Pool,
	}

	n := req.DayCount
	if !req.FlexibleDates && req.StartDate != "" {
		end := req.EndDate
		if end == "" {
			end = req.StartDate
		}
		days, err := domain.DaysInclusive(req.StartDate, end)
		if err != nil {
			return domain.Trip{}, err
		}
		trip.Dates = &domain.DateRange{Start: req.StartDate, End: end}
		n = days
	} else if n < 1 {
		n = len(req.Days)
	}
	if n < 1 {
		return domain.Trip{}, fmt.Errorf("%w: a trip needs at least one day", domain.ErrValidation)
	}

	if len(trip.Days) == 0 {
		trip.Days = make([]domain.Day, n)
		for i := range trip.Days {
			trip.Days[i] = domain.NewDay(i+1, "")
		}
	}
	if trip.Dates != nil && len(trip.Days) != n {
		return domain.Trip{}, fmt.Errorf("%w: %d days for a %d-day date range", domain.ErrValidation, len(trip.Days), n)
	}
	if err := validateDays(trip.Days); err != nil {
		return domain.Trip{}, err
	}

	if trip.Status == "" {
		trip.Status = domain.StatusPlanning
		if trip.Flexible() {
			trip.Status = domain.StatusDreaming
		}
	}
	if !trip.Status.Valid() {
		return domain.Trip{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, trip.Status)
	}
	return trip, nil
}

func validatePatch(p domain.Patch) error {
	if p.IsEmpty() {
		return fmt.Errorf("%w: empty update", domain.ErrValidation)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *p.Status)
	}
	if p.StartDate != nil && p.EndDate != nil && *p.StartDate != "" && *p.EndDate != "" {
		if _, err := domain.DaysInclusive(*p.StartDate, *p.EndDate); err != nil {
			return err
		}
	}
	if p.Days != nil {
		if len(*p.Days) == 0 {
			return fmt.Errorf("%w: a trip needs at least one day", domain.ErrValidation)
		}
		if err := validateDays(*p.Days); err != nil {
			return err
		}
	}
	return nil
}

// validateDays enforces contiguous 1-based day numbers.
func validateDays(days []domain.Day) error {
	for i, d := range days {
		if d.DayNumber != i+1 {
			return fmt.Errorf("%w: day at position %d is numbered %d", domain.ErrValidation, i+1, d.DayNumber)
		}
	}
	return nil
}
