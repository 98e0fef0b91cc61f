// Package repo contains all database access logic for the trip API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripboard/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for trip documents.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with its
	// database-generated id and timestamps.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID returns domain.ErrNotFound for unknown or malformed ids.
	GetByID(ctx context.Context, id string) (domain.Trip, error)

	// List returns every trip in creation order.
	List(ctx context.Context) ([]domain.Trip, error)

	// Patch overwrites only the fields set in p and returns the updated record.
	// A patch with FlexibleDates=true clears both dates.
	Patch(ctx context.Context, id string, p domain.Patch) (domain.Trip, error)

	// Delete removes a trip. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, name, destinations, start_date, end_date, flexible_dates,
		group_size, group_type, status, days, pool, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		INSERT INTO trips (name, destinations, start_date, end_date, flexible_dates,
		                   group_size, group_type, status, days, pool)
		VALUES (@name, @destinations, @start_date, @end_date, @flexible,
		        @group_size, @group_type, @status, @days, @pool)
		RETURNING ` + tripColumns

	var start, end pgtype.Date
	if trip.Dates != nil {
		var err error
		if start, err = pgDate(&trip.Dates.Start); err != nil {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
		}
		if end, err = pgDate(&trip.Dates.End); err != nil {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
		}
	}

	args := pgx.NamedArgs{
		"name":         trip.Name,
		"destinations": nonNil(trip.Destinations),
		"start_date":   start,
		"end_date":     end,
		"flexible":     trip.Dates == nil,
		"group_size":   trip.GroupSize,
		"group_type":   trip.GroupType,
		"status":       string(trip.Status),
		"days":         nonNil(trip.Days),
		"pool":         nonNil(trip.Pool),
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
	}

	q := `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": uid}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns every trip, oldest first, so a hydrated collection has the
// same order as one built by successive creates.
func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}
	return trips, nil
}

// Patch applies a partial update. Each nil field keeps its stored value.
func (r *pgTripRepo) Patch(ctx context.Context, id string, p domain.Patch) (domain.Trip, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Patch: %w", domain.ErrNotFound)
	}

	q := `
		UPDATE trips
		SET name           = COALESCE(@name, name),
		    destinations   = COALESCE(@destinations::jsonb, destinations),
		    start_date     = CASE WHEN @flexible::boolean THEN NULL
		                          ELSE COALESCE(@start_date::date, start_date) END,
		    end_date       = CASE WHEN @flexible::boolean THEN NULL
		                          ELSE COALESCE(@end_date::date, end_date) END,
		    flexible_dates = COALESCE(@flexible::boolean, flexible_dates),
		    status         = COALESCE(@status, status),
		    days           = COALESCE(@days::jsonb, days),
		    pool           = COALESCE(@pool::jsonb, pool),
		    updated_at     = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	start, err := pgDate(p.StartDate)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Patch: %w", err)
	}
	end, err := pgDate(p.EndDate)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Patch: %w", err)
	}
	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}

	args := pgx.NamedArgs{
		"id":           uid,
		"name":         p.Name,
		"destinations": p.Destinations,
		"start_date":   start,
		"end_date":     end,
		"flexible":     p.FlexibleDates,
		"status":       status,
		"days":         p.Days,
		"pool":         p.Pool,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Patch: %w", mapPgError(err))
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = @id`, pgx.NamedArgs{"id": uid})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t          domain.Trip
		id         pgtype.UUID
		start, end pgtype.Date
		flexible   bool
		status     string
	)

	err := s.Scan(&id, &t.Name, &t.Destinations, &start, &end, &flexible,
		&t.GroupSize, &t.GroupType, &status, &t.Days, &t.Pool, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes).String()
	t.Status = domain.Status(status)
	if !flexible && start.Valid {
		t.Dates = &domain.DateRange{Start: start.Time.Format(domain.DateLayout)}
		if end.Valid {
			t.Dates.End = end.Time.Format(domain.DateLayout)
		}
	}
	t.SyncState = domain.SyncSynced
	return t, nil
}

// pgDate converts an optional canonical date string to a pgtype.Date.
// nil or "" becomes NULL.
func pgDate(s *string) (pgtype.Date, error) {
	if s == nil || *s == "" {
		return pgtype.Date{}, nil
	}
	t, err := domain.ParseDate(*s)
	if err != nil {
		return pgtype.Date{}, err
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

// nonNil keeps NOT NULL JSONB columns from receiving a JSON null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// mapPgError turns constraint violations into domain.ErrValidation.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23514" {
		return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.ConstraintName)
	}
	return err
}
