package domain

import "errors"

// ErrNotFound is returned when the requested trip, day, slot, or item does not
// exist. Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing name, end date before start date).
// Handlers map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrLastDay is returned when deleting the only remaining day of a trip.
var ErrLastDay = errors.New("cannot delete the last day")

// ErrDuplicateDestination is returned when appending a destination the trip
// already has (compared case-insensitively).
var ErrDuplicateDestination = errors.New("destination already on trip")

// ErrNoCurrentTrip is returned by planner operations that act on the current
// trip when nothing is selected.
var ErrNoCurrentTrip = errors.New("no current trip")
