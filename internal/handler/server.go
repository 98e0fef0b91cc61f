// Package handler implements the HTTP handlers for the trip persistence API.
// All handlers are methods on Server; Routes wires them into a chi router.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/spec"
)

// TripServicer defines the business operations the trip handlers depend on.
// Declared in the consumer package so handler tests can inject a mock.
type TripServicer interface {
	Create(ctx context.Context, req domain.CreateRequest) (domain.Trip, error)
	GetByID(ctx context.Context, id string) (domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	Save(ctx context.Context, id string, p domain.Patch) (domain.Trip, error)
	Delete(ctx context.Context, id string) error
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips TripServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer) *Server {
	return &Server{trips: trips}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil)
}

// Routes returns a router serving every API endpoint.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/create", s.CreateTrip)
		r.Get("/{id}", s.GetTrip)
		r.Patch("/{id}/save", s.SaveTrip)
		r.Delete("/{id}/save", s.DeleteTrip)
	})
	return r
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
