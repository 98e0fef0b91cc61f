package domain

// SlotID identifies a time-of-day cell. The set is fixed; every day carries
// exactly one Slot per entry in SlotTemplate, in template order.
type SlotID string

const (
	SlotBreakfast SlotID = "breakfast"
	SlotMorning   SlotID = "morning"
	SlotLunch     SlotID = "lunch"
	SlotAfternoon SlotID = "afternoon"
	SlotDinner    SlotID = "dinner"
	SlotEvening   SlotID = "evening"
)

// SlotTemplate is the ordered slot set applied when a day is created.
var SlotTemplate = []struct {
	ID    SlotID
	Label string
	Time  string
}{
	{SlotBreakfast, "Breakfast", "8:00 AM"},
	{SlotMorning, "Morning", "10:00 AM"},
	{SlotLunch, "Lunch", "12:30 PM"},
	{SlotAfternoon, "Afternoon", "2:30 PM"},
	{SlotDinner, "Dinner", "7:00 PM"},
	{SlotEvening, "Evening", "9:00 PM"},
}

// Lodging is where the group sleeps on a given night.
type Lodging struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	CheckIn  string `json:"check_in,omitempty"`
	CheckOut string `json:"check_out,omitempty"`
	PlaceID  string `json:"place_id,omitempty"`
}

// TransportEvent is a leg of travel within a day (flight, train, drive).
type TransportEvent struct {
	ID            string `json:"id"`
	Mode          string `json:"mode"`
	From          string `json:"from"`
	To            string `json:"to"`
	DepartureTime string `json:"departure_time,omitempty"`
	ArrivalTime   string `json:"arrival_time,omitempty"`
	Reference     string `json:"reference,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Slot is one time-of-day cell inside a Day.
type Slot struct {
	ID           SlotID        `json:"id"`
	Label        string        `json:"label"`
	Time         string        `json:"time"`
	Places       []PlacedPlace `json:"places"`
	Ghosts       []Ghost       `json:"ghost_items"`
	QuickEntries []QuickEntry  `json:"quick_entries"`
}

// Empty reports whether the slot has no placed places and no ghosts.
// Quick entries do not count; they live beside the place model.
func (s *Slot) Empty() bool {
	return len(s.Places) == 0 && len(s.Ghosts) == 0
}

// Clone returns a deep copy of s.
func (s Slot) Clone() Slot {
	c := s
	c.Places = make([]PlacedPlace, len(s.Places))
	for i := range s.Places {
		c.Places[i] = s.Places[i].Clone()
	}
	c.Ghosts = make([]Ghost, len(s.Ghosts))
	for i := range s.Ghosts {
		c.Ghosts[i] = s.Ghosts[i].Clone()
	}
	c.QuickEntries = append([]QuickEntry{}, s.QuickEntries...)
	return c
}

// Day is one day of a trip. Date and DayOfWeek are derived from the trip's
// start date and the day's position; they are empty on flexible trips.
type Day struct {
	DayNumber   int              `json:"day_number"`
	Destination string           `json:"destination,omitempty"`
	Date        string           `json:"date,omitempty"`
	DayOfWeek   string           `json:"day_of_week,omitempty"`
	Lodging     *Lodging         `json:"lodging,omitempty"`
	Transport   []TransportEvent `json:"transport,omitempty"`
	Slots       []Slot           `json:"slots"`
}

// NewDay returns a blank day with the full slot skeleton.
func NewDay(number int, destination string) Day {
	slots := make([]Slot, len(SlotTemplate))
	for i, tpl := range SlotTemplate {
		slots[i] = Slot{
			ID:           tpl.ID,
			Label:        tpl.Label,
			Time:         tpl.Time,
			Places:       []PlacedPlace{},
			Ghosts:       []Ghost{},
			QuickEntries: []QuickEntry{},
		}
	}
	return Day{DayNumber: number, Destination: destination, Slots: slots}
}

// Slot returns a pointer to the slot with the given id, or nil.
func (d *Day) Slot(id SlotID) *Slot {
	for i := range d.Slots {
		if d.Slots[i].ID == id {
			return &d.Slots[i]
		}
	}
	return nil
}

// PlacedCount returns the number of placed places across all slots.
func (d *Day) PlacedCount() int {
	n := 0
	for i := range d.Slots {
		n += len(d.Slots[i].Places)
	}
	return n
}

// Clone returns a deep copy of d.
func (d Day) Clone() Day {
	c := d
	if d.Lodging != nil {
		l := *d.Lodging
		c.Lodging = &l
	}
	c.Transport = append([]TransportEvent(nil), d.Transport...)
	c.Slots = make([]Slot, len(d.Slots))
	for i := range d.Slots {
		c.Slots[i] = d.Slots[i].Clone()
	}
	return c
}
