package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/pkordes/tripboard/internal/domain"
)

// fatih/color disables itself when stdout is not a terminal.
var (
	successColor = color.New(color.FgGreen, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dateLabel(t *domain.Trip) string {
	if t.Dates == nil {
		return fmt.Sprintf("flexible, %d days", len(t.Days))
	}
	return fmt.Sprintf("%s → %s", t.Dates.Start, t.Dates.End)
}

// printTrip writes the day-by-day itinerary of t.
func printTrip(w io.Writer, t *domain.Trip) {
	_, _ = headerColor.Fprintf(w, "%s", t.Name)
	_, _ = dimColor.Fprintf(w, "  %s  [%s]  %s\n", t.ID, t.Status, dateLabel(t))
	fmt.Fprintf(w, "Destinations: %s\n", strings.Join(t.Destinations, ", "))

	for _, d := range t.Days {
		fmt.Fprintln(w)
		heading := fmt.Sprintf("Day %d", d.DayNumber)
		if d.Date != "" {
			heading += fmt.Sprintf(" · %s %s", d.DayOfWeek, d.Date)
		}
		if d.Destination != "" {
			heading += " · " + d.Destination
		}
		_, _ = headerColor.Fprintln(w, heading)
		if d.Lodging != nil {
			fmt.Fprintf(w, "  lodging: %s\n", d.Lodging.Name)
		}
		for _, s := range d.Slots {
			for _, pl := range s.Places {
				fmt.Fprintf(w, "  %-10s %s", s.Label, pl.Name)
				if pl.SpecificTime != "" {
					fmt.Fprintf(w, " @ %s", pl.SpecificTime)
				}
				fmt.Fprintf(w, "  (%s)\n", pl.ID)
			}
			for _, q := range s.QuickEntries {
				fmt.Fprintf(w, "  %-10s %s [%s]\n", s.Label, q.Label, q.Status)
			}
		}
	}

	available := 0
	for _, pl := range t.Pool {
		if pl.Status == domain.PoolAvailable {
			available++
		}
	}
	fmt.Fprintf(w, "\nPool: %d available of %d\n", available, len(t.Pool))
}
