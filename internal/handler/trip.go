package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripboard/internal/domain"
)

// createTripRequest is the body of POST /trips/create.
// Dates are decoded as openapi Date values so malformed dates are rejected
// before the service sees them.
type createTripRequest struct {
	Name          string              `json:"name"`
	Destinations  []string            `json:"destinations"`
	StartDate     *openapi_types.Date `json:"start_date,omitempty"`
	EndDate       *openapi_types.Date `json:"end_date,omitempty"`
	DayCount      int                 `json:"day_count,omitempty"`
	FlexibleDates bool                `json:"flexible_dates"`
	GroupSize     int                 `json:"group_size,omitempty"`
	GroupType     string              `json:"group_type,omitempty"`
	Days          []domain.Day        `json:"days"`
	Pool          []domain.Place      `json:"pool"`
	Status        domain.Status       `json:"status"`
}

// saveTripRequest is the body of PATCH /trips/{id}/save.
type saveTripRequest struct {
	Name          *string             `json:"name,omitempty"`
	Destinations  *[]string           `json:"destinations,omitempty"`
	StartDate     *openapi_types.Date `json:"start_date,omitempty"`
	EndDate       *openapi_types.Date `json:"end_date,omitempty"`
	FlexibleDates *bool               `json:"flexible_dates,omitempty"`
	Status        *domain.Status      `json:"status,omitempty"`
	Days          *[]domain.Day       `json:"days,omitempty"`
	Pool          *[]domain.Place     `json:"pool,omitempty"`
}

// CreateTripResponse is the body of a successful create.
type CreateTripResponse struct {
	ID string `json:"id"`
}

// TripListResponse is the body of GET /trips.
type TripListResponse struct {
	Data []domain.Trip `json:"data"`
}

// CreateTrip handles POST /trips/create.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body createTripRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	created, err := s.trips.Create(r.Context(), createFromRequest(body))
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, CreateTripResponse{ID: created.ID})
}

// ListTrips handles GET /trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	writeJSON(w, http.StatusOK, TripListResponse{Data: trips})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// SaveTrip handles PATCH /trips/{id}/save.
// Only the fields present in the body are written.
func (s *Server) SaveTrip(w http.ResponseWriter, r *http.Request) {
	var body saveTripRequest
	if err := decodeJSON(r, &body); err != nil {
		writeDecodeError(w, err)
		return
	}

	if _, err := s.trips.Save(r.Context(), chi.URLParam(r, "id"), patchFromRequest(body)); err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTrip handles DELETE /trips/{id}/save.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.trips.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- mapping helpers -------------------------------------------------------

func writeDecodeError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: ErrorDetail{Code: "payload_too_large", Message: "request body too large"},
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
}

func createFromRequest(b createTripRequest) domain.CreateRequest {
	return domain.CreateRequest{
		Name:          b.Name,
		Destinations:  b.Destinations,
		StartDate:     dateString(b.StartDate),
		EndDate:       dateString(b.EndDate),
		DayCount:      b.DayCount,
		FlexibleDates: b.FlexibleDates,
		GroupSize:     b.GroupSize,
		GroupType:     b.GroupType,
		Days:          b.Days,
		Pool:          b.Pool,
		Status:        b.Status,
	}
}

func patchFromRequest(b saveTripRequest) domain.Patch {
	p := domain.Patch{
		Name:          b.Name,
		Destinations:  b.Destinations,
		FlexibleDates: b.FlexibleDates,
		Status:        b.Status,
		Days:          b.Days,
		Pool:          b.Pool,
	}
	if b.StartDate != nil {
		s := dateString(b.StartDate)
		p.StartDate = &s
	}
	if b.EndDate != nil {
		e := dateString(b.EndDate)
		p.EndDate = &e
	}
	return p
}

func dateString(d *openapi_types.Date) string {
	if d == nil {
		return ""
	}
	return d.Format(openapi_types.DateFormat)
}
