package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// SlotConfig is the booking configuration of a facility.
// Supports hierarchical configuration:
// 1. Sport at the facility (facility_id, sport_id)
// 2. Facility-wide (facility_id, NULL)
// Built-in defaults apply when neither exists.
type SlotConfig struct {
	ID                      int64
	FacilityID              int64
	SportID                 *int64 // NULL = config for all sports
	SlotDurationMinutes     int
	HoldWindowMinutes       int
	AdvanceBookingDays      int // 0 = unlimited
	MinBookingNoticeMinutes int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// DefaultSlotConfig returns the built-in configuration.
// holdWindowMinutes comes from the service configuration.
func DefaultSlotConfig(facilityID int64, holdWindowMinutes int) *SlotConfig {
	return &SlotConfig{
		FacilityID:              facilityID,
		SlotDurationMinutes:     DefaultSlotDurationMinutes,
		HoldWindowMinutes:       holdWindowMinutes,
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
	}
}

// IsFacilityWide returns true if this configuration applies to every sport.
func (c *SlotConfig) IsFacilityWide() bool {
	return c.SportID == nil
}

// IsDefault returns true if the configuration was not loaded from storage.
func (c *SlotConfig) IsDefault() bool {
	return c.ID == 0
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made.
func (c *SlotConfig) HasAdvanceBookingLimit() bool {
	return c.AdvanceBookingDays > 0
}

// HoldWindow returns the pending hold duration.
func (c *SlotConfig) HoldWindow() time.Duration {
	return time.Duration(c.HoldWindowMinutes) * time.Minute
}

// CheckDate validates a calendar date against the facility's local now.
func (c *SlotConfig) CheckDate(date, localNow time.Time) error {
	today := DateOnly(localNow)
	day := DateOnly(date)
	if day.Before(today) {
		return ErrDateInPast
	}
	if c.HasAdvanceBookingLimit() && day.After(today.AddDate(0, 0, c.AdvanceBookingDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFar, c.AdvanceBookingDays)
	}
	return nil
}

// CheckNotice validates that a slot starting at start on date begins at least
// MinBookingNoticeMinutes after localNow. The slot is placed in localNow's location.
func (c *SlotConfig) CheckNotice(date time.Time, start types.TimeString, localNow time.Time) error {
	y, m, d := date.Date()
	startAt := time.Date(y, m, d, 0, 0, 0, 0, localNow.Location()).
		Add(time.Duration(start.Minutes()) * time.Minute)
	earliest := localNow.Add(time.Duration(c.MinBookingNoticeMinutes) * time.Minute)
	if startAt.Before(earliest) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, c.MinBookingNoticeMinutes)
	}
	return nil
}
