package domain

import (
	"strings"
	"time"
)

// PlaceType is the category of a place.
type PlaceType string

const (
	PlaceRestaurant   PlaceType = "restaurant"
	PlaceCafe         PlaceType = "cafe"
	PlaceBar          PlaceType = "bar"
	PlaceMuseum       PlaceType = "museum"
	PlaceActivity     PlaceType = "activity"
	PlaceShop         PlaceType = "shop"
	PlacePark         PlaceType = "park"
	PlaceNeighborhood PlaceType = "neighborhood"
	PlaceHotel        PlaceType = "hotel"
)

// Source records where a place came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceImported Source = "imported"
	SourceGhost    Source = "ghost"
	SourceFriend   Source = "friend"
	SourceLibrary  Source = "library"
)

// PoolStatus is the state of a pool entry.
type PoolStatus string

const (
	PoolAvailable PoolStatus = "available"
	PoolRejected  PoolStatus = "rejected"
)

// Match is the taste-match payload produced by the extraction pipeline.
type Match struct {
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
}

// Rating is a user's verdict on a place. It belongs to the logical place, so
// it is mirrored onto every copy of that place on the board.
type Rating struct {
	Reaction string    `json:"reaction"`
	Note     string    `json:"note,omitempty"`
	RatedAt  time.Time `json:"rated_at"`
}

// Place is a pool entry: a place the user collected but which is not bound
// to a slot. Pool entries are never mutated or removed by placement.
type Place struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Type           PlaceType  `json:"type"`
	Location       string     `json:"location"`
	Match          *Match     `json:"match,omitempty"`
	Source         Source     `json:"source,omitempty"`
	FriendName     string     `json:"friend_name,omitempty"`
	LibraryPlaceID string     `json:"library_place_id,omitempty"`
	Status         PoolStatus `json:"status"`
	Rating         *Rating    `json:"rating,omitempty"`
}

// Clone returns a deep copy of p.
func (p Place) Clone() Place {
	c := p
	if p.Match != nil {
		m := *p.Match
		m.Reasons = append([]string(nil), p.Match.Reasons...)
		c.Match = &m
	}
	if p.Rating != nil {
		r := *p.Rating
		c.Rating = &r
	}
	return c
}

// LibraryID returns the id of the canonical saved place this place refers to.
func (p Place) LibraryID() string {
	if p.LibraryPlaceID != "" {
		return p.LibraryPlaceID
	}
	return p.ID
}

// Placement is the back-reference from a placed copy to its cell.
type Placement struct {
	Day  int    `json:"day"`
	Slot SlotID `json:"slot"`
}

// PlacedPlace is a copy of a place bound to a slot.
// SpecificTime is "HH:MM" (24h) when set.
type PlacedPlace struct {
	Place
	PlacedIn     Placement `json:"placed_in"`
	SpecificTime string    `json:"specific_time,omitempty"`
	TimeLabel    string    `json:"time_label,omitempty"`
	Confirmed    bool      `json:"confirmed,omitempty"`
}

// Clone returns a deep copy of p.
func (p PlacedPlace) Clone() PlacedPlace {
	c := p
	c.Place = p.Place.Clone()
	return c
}

// Unplace returns the pool form of a placed copy, available again.
func (p PlacedPlace) Unplace() Place {
	c := p.Place.Clone()
	c.Status = PoolAvailable
	return c
}

// GhostStatus is the proposal state of a ghost suggestion.
type GhostStatus string

const (
	GhostProposed  GhostStatus = "proposed"
	GhostConfirmed GhostStatus = "confirmed"
)

// Ghost is a suggested place attached to a slot but not yet accepted.
// A ghost has no placement back-reference; it becomes a PlacedPlace on confirm.
type Ghost struct {
	Place
	GhostStatus GhostStatus `json:"ghost_status"`
	Rationale   string      `json:"rationale,omitempty"`
	Confidence  float64     `json:"confidence,omitempty"`
}

// Clone returns a deep copy of g.
func (g Ghost) Clone() Ghost {
	c := g
	c.Place = g.Place.Clone()
	return c
}

// QuickEntryStatus is the lifecycle state of a quick entry.
type QuickEntryStatus string

const (
	QuickTentative QuickEntryStatus = "tentative"
	QuickConfirmed QuickEntryStatus = "confirmed"
)

// QuickEntry is a free-text note attached to a slot ("lunch with Sam").
type QuickEntry struct {
	ID           string           `json:"id"`
	Label        string           `json:"label"`
	Category     string           `json:"category,omitempty"`
	SpecificTime string           `json:"specific_time,omitempty"`
	Status       QuickEntryStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
