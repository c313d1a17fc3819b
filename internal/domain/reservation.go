package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// ReservationStatus represents the state of a reservation.
// FREE is implicit: a slot with no active reservation row.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusExpired   ReservationStatus = "expired"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

// IsActive reports whether the status occupies its slot.
func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no further transition is allowed.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusExpired || s == StatusCancelled || s == StatusCompleted
}

// IsValid reports whether s is a known status.
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusExpired, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusExpired || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// Actor identifies who requested a transition.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorAdmin    Actor = "admin"
	ActorSystem   Actor = "system"
)

func (a Actor) IsValid() bool {
	return a == ActorCustomer || a == ActorAdmin || a == ActorSystem
}

// Reservation is a booking of one court for one interval on one date.
// Rows materialized from a RecurringReservation carry OriginRecurringID.
type Reservation struct {
	ID         int64
	FacilityID int64
	SportID    int64
	CourtID    int64
	CustomerID int64
	Date       time.Time
	StartTime  types.TimeString
	EndTime    types.TimeString
	Status     ReservationStatus

	// Money in minor currency units
	Price              int64
	DepositAmount      int64
	AppliedPromotionID *int64
	GiftItem           *string

	ExpiresAt         *time.Time // set only while pending
	PaymentRef        *string
	OriginRecurringID *int64

	CancelledBy        *Actor
	CancellationReason *string
	CancelledAt        *time.Time
	ConfirmedAt        *time.Time
	CompletedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Overlaps reports whether the reservation intersects [start, end).
// Touching boundaries do not overlap.
func (r *Reservation) Overlaps(start, end types.TimeString) bool {
	return Overlaps(r.StartTime, r.EndTime, start, end)
}

// IsActive reports whether the reservation occupies its slot.
func (r *Reservation) IsActive() bool {
	return r.Status.IsActive()
}

// IsHoldExpired reports whether a pending hold passed its deadline.
func (r *Reservation) IsHoldExpired(now time.Time) bool {
	return r.Status == StatusPending && r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// IsRecurringOccurrence reports whether the row was materialized from a recurring reservation.
func (r *Reservation) IsRecurringOccurrence() bool {
	return r.OriginRecurringID != nil
}

// Overlaps is the strict half-open interval intersection test.
func Overlaps(aStart, aEnd, bStart, bEnd types.TimeString) bool {
	return aStart.IsBefore(bEnd) && aEnd.IsAfter(bStart)
}

// ReservationFilter selects reservations of a facility.
type ReservationFilter struct {
	FacilityID int64
	Date       time.Time
	CourtIDs   []int64             // empty means all courts
	Statuses   []ReservationStatus // empty means any status
}
