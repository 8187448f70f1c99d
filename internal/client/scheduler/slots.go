package scheduler

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DefaultSlots are the daily run times used when none are configured.
var DefaultSlots = []string{"00:05", "12:05"}

// Slot is a time of day, interpreted in the scheduler's location.
type Slot struct {
	Hour   int
	Minute int
}

func (s Slot) String() string { return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute) }

// ParseSlots parses "HH:MM" entries. Duplicates are collapsed and the
// result is sorted.
func ParseSlots(values []string) ([]Slot, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no schedule slots")
	}
	slots := make([]Slot, 0, len(values))
	for _, v := range values {
		t, err := time.Parse("15:04", strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid schedule slot %q, want HH:MM", v)
		}
		slots = append(slots, Slot{Hour: t.Hour(), Minute: t.Minute()})
	}
	slices.SortFunc(slots, func(a, b Slot) int {
		return (a.Hour*60 + a.Minute) - (b.Hour*60 + b.Minute)
	})
	return slices.Compact(slots), nil
}

// Next returns the first slot strictly after now, in loc.
func Next(now time.Time, slots []Slot, loc *time.Location) time.Time {
	local := now.In(loc)
	for day := 0; day <= 1; day++ {
		for _, s := range slots {
			at := time.Date(local.Year(), local.Month(), local.Day()+day, s.Hour, s.Minute, 0, 0, loc)
			if at.After(local) {
				return at
			}
		}
	}
	// Unreachable for a non-empty slot list.
	return local.Add(24 * time.Hour)
}
