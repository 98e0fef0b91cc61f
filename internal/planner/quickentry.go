package planner

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripboard/internal/domain"
)

// QuickEntryInput is the user-supplied content of a quick entry.
type QuickEntryInput struct {
	Label        string
	Category     string
	SpecificTime string
}

// QuickEntryUpdate holds the fields to change on a quick entry. Nil fields
// are left as they are.
type QuickEntryUpdate struct {
	Label        *string
	Category     *string
	SpecificTime *string
	Status       *domain.QuickEntryStatus
}

func quickIndex(s *domain.Slot, id string) int {
	for i := range s.QuickEntries {
		if s.QuickEntries[i].ID == id {
			return i
		}
	}
	return -1
}

// AddQuickEntry appends a tentative quick entry to a slot and returns its id.
func (p *Planner) AddQuickEntry(day int, slot domain.SlotID, in QuickEntryInput) (string, error) {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return "", fmt.Errorf("planner.Planner.AddQuickEntry: %w: label is required", domain.ErrValidation)
	}
	id := uuid.NewString()
	err := p.mutateCurrent("AddQuickEntry", func(t *domain.Trip) error {
		s, err := slotAt(t, day, slot)
		if err != nil {
			return err
		}
		s.QuickEntries = append(s.QuickEntries, domain.QuickEntry{
			ID:           id,
			Label:        label,
			Category:     in.Category,
			SpecificTime: in.SpecificTime,
			Status:       domain.QuickTentative,
			CreatedAt:    p.clock.Now(),
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateQuickEntry changes the non-nil fields of a quick entry.
func (p *Planner) UpdateQuickEntry(day int, slot domain.SlotID, id string, u QuickEntryUpdate) error {
	if u.Label != nil && strings.TrimSpace(*u.Label) == "" {
		return fmt.Errorf("planner.Planner.UpdateQuickEntry: %w: label must not be empty", domain.ErrValidation)
	}
	if u.Status != nil && *u.Status != domain.QuickTentative && *u.Status != domain.QuickConfirmed {
		return fmt.Errorf("planner.Planner.UpdateQuickEntry: %w: unknown status %q", domain.ErrValidation, *u.Status)
	}
	return p.mutateCurrent("UpdateQuickEntry", func(t *domain.Trip) error {
		s, err := slotAt(t, day, slot)
		if err != nil {
			return err
		}
		i := quickIndex(s, id)
		if i < 0 {
			return fmt.Errorf("quick entry %s: %w", id, domain.ErrNotFound)
		}
		q := &s.QuickEntries[i]
		if u.Label != nil {
			q.Label = strings.TrimSpace(*u.Label)
		}
		if u.Category != nil {
			q.Category = *u.Category
		}
		if u.SpecificTime != nil {
			q.SpecificTime = *u.SpecificTime
		}
		if u.Status != nil {
			q.Status = *u.Status
		}
		return nil
	})
}

// ConfirmQuickEntry marks a quick entry confirmed.
func (p *Planner) ConfirmQuickEntry(day int, slot domain.SlotID, id string) error {
	st := domain.QuickConfirmed
	return p.UpdateQuickEntry(day, slot, id, QuickEntryUpdate{Status: &st})
}

// RemoveQuickEntry deletes a quick entry. Unknown ids are ignored.
func (p *Planner) RemoveQuickEntry(day int, slot domain.SlotID, id string) error {
	return p.mutateCurrent("RemoveQuickEntry", func(t *domain.Trip) error {
		s, err := slotAt(t, day, slot)
		if err != nil {
			return err
		}
		i := quickIndex(s, id)
		if i < 0 {
			return errNoChange
		}
		s.QuickEntries = append(s.QuickEntries[:i:i], s.QuickEntries[i+1:]...)
		return nil
	})
}
