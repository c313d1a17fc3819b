package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingDraft is the client-held state of a multi-step booking.
// It travels with every request as JSON. Selections are changed only
// through the With* methods, which clear the selections that depend on
// the changed one:
//
//	date     -> clears slot and court
//	facility -> clears court
//	slot     -> clears court
//
// Facility and slot may be picked in either order, so neither clears the other.
type BookingDraft struct {
	ID         string `json:"id"`
	Date       string `json:"date,omitempty"` // YYYY-MM-DD
	FacilityID *int64 `json:"facilityId,omitempty"`
	SportID    *int64 `json:"sportId,omitempty"`
	Slot       string `json:"slot,omitempty"` // HH:MM-HH:MM
	CourtID    *int64 `json:"courtId,omitempty"`
}

// NewBookingDraft starts an empty draft.
func NewBookingDraft() BookingDraft {
	return BookingDraft{ID: uuid.NewString()}
}

// WithDate selects a date.
func (d BookingDraft) WithDate(date time.Time) BookingDraft {
	value := date.Format(DateFormat)
	if d.Date == value {
		return d
	}
	d.Date = value
	d.Slot = ""
	d.CourtID = nil
	return d
}

// WithFacility selects a facility and sport.
func (d BookingDraft) WithFacility(facilityID, sportID int64) BookingDraft {
	if d.FacilityID != nil && *d.FacilityID == facilityID && d.SportID != nil && *d.SportID == sportID {
		return d
	}
	d.FacilityID = &facilityID
	d.SportID = &sportID
	d.CourtID = nil
	return d
}

// WithSlot selects a slot.
func (d BookingDraft) WithSlot(slot Slot) BookingDraft {
	if d.Slot == slot.Key() {
		return d
	}
	d.Slot = slot.Key()
	d.CourtID = nil
	return d
}

// WithCourt selects the court, the last step.
func (d BookingDraft) WithCourt(courtID int64) BookingDraft {
	d.CourtID = &courtID
	return d
}

// ParsedDate returns the selected date.
func (d BookingDraft) ParsedDate() (time.Time, error) {
	if d.Date == "" {
		return time.Time{}, fmt.Errorf("%w: date is not selected", ErrDraftIncomplete)
	}
	date, err := time.Parse(DateFormat, d.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrDraftIncomplete, d.Date)
	}
	return date, nil
}

// ParsedSlot returns the selected slot.
func (d BookingDraft) ParsedSlot() (Slot, error) {
	if d.Slot == "" {
		return Slot{}, fmt.Errorf("%w: slot is not selected", ErrDraftIncomplete)
	}
	slot, err := ParseSlotKey(d.Slot)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %v", ErrDraftIncomplete, err)
	}
	return slot, nil
}

// Validate checks that every step is selected.
func (d BookingDraft) Validate() error {
	if _, err := d.ParsedDate(); err != nil {
		return err
	}
	if d.FacilityID == nil || d.SportID == nil {
		return fmt.Errorf("%w: facility is not selected", ErrDraftIncomplete)
	}
	if _, err := d.ParsedSlot(); err != nil {
		return err
	}
	if d.CourtID == nil {
		return fmt.Errorf("%w: court is not selected", ErrDraftIncomplete)
	}
	return nil
}
