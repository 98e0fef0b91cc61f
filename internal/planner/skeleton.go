package planner

import (
	"strings"

	"github.com/pkordes/tripboard/internal/domain"
)

// distribute assigns a destination to each of n days.
//
// With an allocation, destinations take their allocated day counts in list
// order; days left over go to the last destination and surplus allocation is
// cut off. Without one, day i goes to destinations[i*len/n], spreading them
// evenly in order.
func distribute(destinations []string, n int, allocation map[string]int) []string {
	out := make([]string, 0, n)
	if len(destinations) == 0 {
		for range n {
			out = append(out, "")
		}
		return out
	}

	if allocationTotal(destinations, allocation) > 0 {
		for _, d := range destinations {
			for range allocation[d] {
				if len(out) == n {
					return out
				}
				out = append(out, d)
			}
		}
		last := destinations[len(destinations)-1]
		for len(out) < n {
			out = append(out, last)
		}
		return out
	}

	for i := range n {
		out = append(out, destinations[i*len(destinations)/n])
	}
	return out
}

func allocationTotal(destinations []string, allocation map[string]int) int {
	total := 0
	for _, d := range destinations {
		if c := allocation[d]; c > 0 {
			total += c
		}
	}
	return total
}

// buildDays returns n blank days with destinations distributed across them.
func buildDays(destinations []string, n int, allocation map[string]int) []domain.Day {
	names := distribute(destinations, n, allocation)
	days := make([]domain.Day, n)
	for i := range days {
		days[i] = domain.NewDay(i+1, names[i])
	}
	return days
}

// renumber restores days[i].DayNumber == i+1 and points every placed copy's
// back-reference at its current cell.
func renumber(days []domain.Day) {
	for i := range days {
		days[i].DayNumber = i + 1
		for j := range days[i].Slots {
			s := &days[i].Slots[j]
			for k := range s.Places {
				s.Places[k].PlacedIn = domain.Placement{Day: i + 1, Slot: s.ID}
			}
		}
	}
}

// rederiveDates recomputes every day's date and weekday from the trip's start
// date and sets the end date to match the day count. Flexible trips are left
// alone.
func rederiveDates(t *domain.Trip) error {
	if t.Dates == nil {
		return nil
	}
	for i := range t.Days {
		date, err := domain.AddDays(t.Dates.Start, i)
		if err != nil {
			return err
		}
		t.Days[i].Date = date
		t.Days[i].DayOfWeek = domain.Weekday(date)
	}
	n := len(t.Days)
	if n == 0 {
		n = 1
	}
	end, err := domain.AddDays(t.Dates.Start, n-1)
	if err != nil {
		return err
	}
	t.Dates.End = end
	return nil
}

// destinationsFromDays returns the distinct non-empty day destinations in
// first-appearance order.
func destinationsFromDays(days []domain.Day) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, d := range days {
		key := strings.ToLower(strings.TrimSpace(d.Destination))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d.Destination)
	}
	return out
}

// matchesDestination reports whether a place's location refers to dest.
func matchesDestination(location, dest string) bool {
	l := strings.ToLower(strings.TrimSpace(location))
	d := strings.ToLower(strings.TrimSpace(dest))
	if l == "" || d == "" {
		return false
	}
	return l == d || strings.Contains(l, d)
}
