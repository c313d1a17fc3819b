package domain

// Default configuration values
const (
	DefaultSlotDurationMinutes     = 60
	DefaultHoldWindowMinutes       = 20
	DefaultAdvanceBookingDays      = 0 // 0 = unlimited
	DefaultMinBookingNoticeMinutes = 0
)

// Business validation constants
const (
	MinSlotDurationMinutes      = 15
	MaxSlotDurationMinutes      = 240
	MinHoldWindowMinutes        = 1
	MaxHoldWindowMinutes        = 24 * 60
	MinAdvanceBookingDays       = 0
	MaxAdvanceBookingDays       = 365
	MinBookingNoticeMinutes     = 0
	MaxBookingNoticeMinutes     = 10080 // 1 week
	MaxCancellationReasonLength = 500
	MaxMergedSources            = 20
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses statuses that occupy a slot.
// Matches the partial unique index on reservations.
var ActiveStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
}
