// Package domain contains the core data types for the Tripboard itinerary planner.
// This package has no I/O and is imported by every other internal package
// (planner, persist, client, repo, service, handler).
package domain

import "time"

// Status is the planning stage of a trip.
type Status string

const (
	StatusDreaming  Status = "dreaming"
	StatusPlanning  Status = "planning"
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDreaming, StatusPlanning, StatusBooked, StatusCompleted:
		return true
	}
	return false
}

// SyncState tracks whether a trip exists on the server yet.
// It is local bookkeeping and never sent over the wire.
type SyncState string

const (
	SyncPending  SyncState = "pending"  // create request in flight
	SyncSynced   SyncState = "synced"   // server id assigned
	SyncUnsynced SyncState = "unsynced" // create failed; trip only exists locally
)

// DateRange is an inclusive range of calendar days in "2006-01-02" form.
type DateRange struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// Destination is a geocoded destination.
type Destination struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Trip is the aggregate root of an itinerary.
//
// A trip is either date-bound (Dates != nil, one Day per calendar day in the
// range) or date-flexible (Dates == nil, len(Days) is the day count).
// Days[i].DayNumber == i+1 always holds.
type Trip struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Destinations    []string      `json:"destinations"`
	GeoDestinations []Destination `json:"geo_destinations,omitempty"`
	Dates           *DateRange    `json:"dates,omitempty"`
	GroupSize       int           `json:"group_size,omitempty"`
	GroupType       string        `json:"group_type,omitempty"`
	Status          Status        `json:"status"`
	Days            []Day         `json:"days"`
	Pool            []Place       `json:"pool"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	SyncState SyncState `json:"-"`
}

// Flexible reports whether the trip has no fixed date range.
func (t *Trip) Flexible() bool {
	return t.Dates == nil
}

// HasDestination reports whether name is already one of the trip's
// destinations, compared case-insensitively.
func (t *Trip) HasDestination(name string) bool {
	for _, d := range t.Destinations {
		if equalFold(d, name) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of t. Managers mutate the clone and swap it into
// the collection, so the previous value stays valid for anyone holding it.
func (t *Trip) Clone() *Trip {
	c := *t
	c.Destinations = append([]string(nil), t.Destinations...)
	c.GeoDestinations = append([]Destination(nil), t.GeoDestinations...)
	if t.Dates != nil {
		d := *t.Dates
		c.Dates = &d
	}
	c.Days = make([]Day, len(t.Days))
	for i := range t.Days {
		c.Days[i] = t.Days[i].Clone()
	}
	c.Pool = make([]Place, len(t.Pool))
	for i := range t.Pool {
		c.Pool[i] = t.Pool[i].Clone()
	}
	return &c
}

// Snapshot returns the full persistable state of t as a Patch.
// It is what every debounced save and every post-swap save sends.
func (t *Trip) Snapshot() Patch {
	c := t.Clone()
	flexible := c.Flexible()
	p := Patch{
		Name:          &c.Name,
		Destinations:  &c.Destinations,
		Status:        &c.Status,
		Days:          &c.Days,
		Pool:          &c.Pool,
		FlexibleDates: &flexible,
	}
	if c.Dates != nil {
		p.StartDate = &c.Dates.Start
		p.EndDate = &c.Dates.End
	}
	return p
}

// CreateRequest is the body of the create call: everything the server needs
// to store a new trip, including the fully built day skeleton.
type CreateRequest struct {
	Name          string   `json:"name"`
	Destinations  []string `json:"destinations"`
	StartDate     string   `json:"start_date,omitempty"`
	EndDate       string   `json:"end_date,omitempty"`
	DayCount      int      `json:"day_count,omitempty"`
	FlexibleDates bool     `json:"flexible_dates"`
	GroupSize     int      `json:"group_size,omitempty"`
	GroupType     string   `json:"group_type,omitempty"`
	Days          []Day    `json:"days"`
	Pool          []Place  `json:"pool"`
	Status        Status   `json:"status"`
}

// Patch is a partial trip update. Nil fields are left untouched by the server.
type Patch struct {
	Name          *string   `json:"name,omitempty"`
	Destinations  *[]string `json:"destinations,omitempty"`
	StartDate     *string   `json:"start_date,omitempty"`
	EndDate       *string   `json:"end_date,omitempty"`
	FlexibleDates *bool     `json:"flexible_dates,omitempty"`
	Status        *Status   `json:"status,omitempty"`
	Days          *[]Day    `json:"days,omitempty"`
	Pool          *[]Place  `json:"pool,omitempty"`
}

// IsEmpty reports whether p carries no fields at all.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Destinations == nil && p.StartDate == nil &&
		p.EndDate == nil && p.FlexibleDates == nil && p.Status == nil &&
		p.Days == nil && p.Pool == nil
}
