package domain

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// Slot is a half-open interval [Start, End) on one date.
type Slot struct {
	Start types.TimeString
	End   types.TimeString
}

// Key is the merge key "HH:MM-HH:MM".
func (s Slot) Key() string {
	return s.Start.String() + "-" + s.End.String()
}

func (s Slot) String() string {
	return s.Key()
}

// DurationMinutes returns the slot width.
func (s Slot) DurationMinutes() int {
	return s.End.Minutes() - s.Start.Minutes()
}

// Validate checks both bounds and Start < End.
func (s Slot) Validate() error {
	if err := s.Start.Validate(); err != nil {
		return err
	}
	if err := s.End.Validate(); err != nil {
		return err
	}
	if !s.Start.IsBefore(s.End) {
		return fmt.Errorf("slot start %s must be before end %s", s.Start, s.End)
	}
	return nil
}

// ParseSlotKey parses "HH:MM-HH:MM".
func ParseSlotKey(key string) (Slot, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 {
		return Slot{}, fmt.Errorf("invalid slot key %q", key)
	}
	start, err := types.NewTimeStringFromString(parts[0])
	if err != nil {
		return Slot{}, err
	}
	end, err := types.NewTimeStringFromString(parts[1])
	if err != nil {
		return Slot{}, err
	}
	slot := Slot{Start: start, End: end}
	return slot, slot.Validate()
}

// FreeCourt is a court free in a slot, with its court-specific quote.
type FreeCourt struct {
	CourtID int64
	Quote   *Quote
}

// SlotAvailability is the availability of one slot at one facility sport.
// Quote is nil when pricing failed; PricingError then names the failure.
type SlotAvailability struct {
	Slot         Slot
	FreeCourts   []FreeCourt
	TotalCourts  int
	Quote        *Quote
	PricingError string
}

// IsFull returns true if no court is free.
func (s *SlotAvailability) IsFull() bool {
	return len(s.FreeCourts) == 0
}

// FreeCourtIDs returns the ids of free courts in order.
func (s *SlotAvailability) FreeCourtIDs() []int64 {
	ids := make([]int64, 0, len(s.FreeCourts))
	for _, c := range s.FreeCourts {
		ids = append(ids, c.CourtID)
	}
	return ids
}

// OccupancyRate returns the occupancy rate as a percentage (0-100).
func (s *SlotAvailability) OccupancyRate() float64 {
	if s.TotalCourts == 0 {
		return 0
	}
	occupied := s.TotalCourts - len(s.FreeCourts)
	return float64(occupied) / float64(s.TotalCourts) * 100
}
