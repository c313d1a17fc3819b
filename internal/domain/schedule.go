package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// DaySchedule is the operating window of one weekday.
type DaySchedule struct {
	IsOpen    bool
	OpenTime  types.TimeString
	CloseTime types.TimeString
}

// Validate checks OpenTime < CloseTime for open days.
func (d DaySchedule) Validate() error {
	if !d.IsOpen {
		return nil
	}
	if err := d.OpenTime.Validate(); err != nil {
		return fmt.Errorf("%w: open time: %v", ErrConfiguration, err)
	}
	if err := d.CloseTime.Validate(); err != nil {
		return fmt.Errorf("%w: close time: %v", ErrConfiguration, err)
	}
	if !d.OpenTime.IsBefore(d.CloseTime) {
		return fmt.Errorf("%w: open time %s must be before close time %s", ErrConfiguration, d.OpenTime, d.CloseTime)
	}
	return nil
}

// WeeklyTemplate is the operating schedule of a facility.
// A weekday missing from Days is closed.
type WeeklyTemplate struct {
	FacilityID int64
	Days       map[time.Weekday]DaySchedule
	UpdatedAt  time.Time
}

// ForDate returns the schedule of the date's weekday.
func (t *WeeklyTemplate) ForDate(date time.Time) DaySchedule {
	if t == nil || t.Days == nil {
		return DaySchedule{}
	}
	return t.Days[date.Weekday()]
}

// Validate checks every configured weekday.
func (t *WeeklyTemplate) Validate() error {
	for weekday, day := range t.Days {
		if err := day.Validate(); err != nil {
			return fmt.Errorf("%s: %w", weekday, err)
		}
	}
	return nil
}

// BlackoutRule removes a date, or one court on that date, from the free pool.
type BlackoutRule struct {
	ID         int64
	FacilityID int64
	Date       time.Time
	CourtID    *int64 // nil = facility-wide
	Reason     string
	CreatedAt  time.Time
}

// IsFacilityWide returns true if the blackout closes every court.
func (b *BlackoutRule) IsFacilityWide() bool {
	return b.CourtID == nil
}

// Covers reports whether the blackout removes the court.
func (b *BlackoutRule) Covers(courtID int64) bool {
	return b.CourtID == nil || *b.CourtID == courtID
}

// RecurringReservation is a standing weekly booking.
// It occupies its interval on every matching weekday while active.
type RecurringReservation struct {
	ID         int64
	FacilityID int64
	SportID    int64
	CourtID    int64
	Weekday    time.Weekday
	StartTime  types.TimeString
	EndTime    types.TimeString
	RateID     int64
	OwnerID    int64
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OccursOn reports whether an active recurring reservation falls on the date.
func (r *RecurringReservation) OccursOn(date time.Time) bool {
	return r.IsActive && r.Weekday == date.Weekday()
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether both times fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
