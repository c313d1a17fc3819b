package domain

import "errors"

// Engine error taxonomy. Layers wrap these with %w so callers can use errors.Is.
var (
	// ErrConfiguration missing or contradictory WeeklyTemplate or RateRule data.
	ErrConfiguration = errors.New("configuration error")

	// ErrSlotAlreadyTaken the (court, date, slot) is occupied; prompts re-selection.
	ErrSlotAlreadyTaken = errors.New("slot already taken")

	// ErrInvalidTransition the reservation state does not allow the transition.
	ErrInvalidTransition = errors.New("invalid reservation transition")

	// ErrNoApplicableRate no RateRule prices the slot.
	ErrNoApplicableRate = errors.New("no applicable rate")

	// ErrAmbiguousPromotion several promotions of the same scope match the slot.
	ErrAmbiguousPromotion = errors.New("ambiguous promotion")

	// ErrGranularityMismatch merged sources use different slot boundaries.
	ErrGranularityMismatch = errors.New("slot granularity mismatch")

	// ErrDraftIncomplete the booking draft misses a required selection.
	ErrDraftIncomplete = errors.New("booking draft is incomplete")
)

// IsPricingError reports whether err blocks booking because of pricing configuration.
func IsPricingError(err error) bool {
	return errors.Is(err, ErrNoApplicableRate) || errors.Is(err, ErrAmbiguousPromotion)
}

// Request validation errors against SlotConfig.
var (
	// ErrDateInPast the date is before the facility's local today.
	ErrDateInPast = errors.New("date is in the past")

	// ErrDateTooFar the date is beyond the advance booking window.
	ErrDateTooFar = errors.New("date is beyond the advance booking window")

	// ErrTooLateToBook the slot starts within the minimum booking notice.
	ErrTooLateToBook = errors.New("too late to book this slot")
)
