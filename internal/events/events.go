package events

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Routing keys исходящих событий брони
const (
	RKBookingHeld      = "booking.held"
	RKBookingConfirmed = "booking.confirmed"
	RKBookingCancelled = "booking.cancelled"
	RKBookingExpired   = "booking.expired"
	RKBookingCompleted = "booking.completed"
)

// Routing keys входящих сигналов платёжного сервиса
const (
	RKPaymentPaid   = "payment.paid"
	RKPaymentFailed = "payment.failed"
)

const eventVersion = 1

// BookingEvent сообщение о смене состояния брони
type BookingEvent struct {
	Event      string       `json:"event"`
	Version    int          `json:"version"`
	OccurredAt time.Time    `json:"occurred_at"`
	Data       BookingState `json:"data"`
}

// BookingState снимок брони в сообщении
// GiftItem в booking.confirmed - обязательство выдать подарок для кассы
type BookingState struct {
	ReservationID      int64      `json:"reservation_id"`
	FacilityID         int64      `json:"facility_id"`
	SportID            int64      `json:"sport_id"`
	CourtID            int64      `json:"court_id"`
	CustomerID         int64      `json:"customer_id"`
	Date               string     `json:"date"`
	StartTime          string     `json:"start_time"`
	EndTime            string     `json:"end_time"`
	Status             string     `json:"status"`
	Price              int64      `json:"price"`
	DepositAmount      int64      `json:"deposit_amount"`
	PromotionID        *int64     `json:"promotion_id,omitempty"`
	GiftItem           *string    `json:"gift_item,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	PaymentRef         *string    `json:"payment_ref,omitempty"`
	CancelledBy        *string    `json:"cancelled_by,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
}

// PaymentPaid платёж по брони прошёл
type PaymentPaid struct {
	Event   string `json:"event"`
	Version int    `json:"version"`
	Data    struct {
		PaymentID     string `json:"payment_id"`
		ReservationID int64  `json:"reservation_id"`
		Amount        int64  `json:"amount"`
		Currency      string `json:"currency"`
	} `json:"data"`
}

// PaymentFailed платёж по брони не прошёл
type PaymentFailed struct {
	Event   string `json:"event"`
	Version int    `json:"version"`
	Data    struct {
		PaymentID      string `json:"payment_id"`
		ReservationID  int64  `json:"reservation_id"`
		FailureCode    string `json:"failure_code,omitempty"`
		FailureMessage string `json:"failure_message,omitempty"`
	} `json:"data"`
}

func newBookingEvent(key string, r *domain.Reservation, now time.Time) BookingEvent {
	state := BookingState{
		ReservationID:      r.ID,
		FacilityID:         r.FacilityID,
		SportID:            r.SportID,
		CourtID:            r.CourtID,
		CustomerID:         r.CustomerID,
		Date:               r.Date.Format(domain.DateFormat),
		StartTime:          r.StartTime.String(),
		EndTime:            r.EndTime.String(),
		Status:             string(r.Status),
		Price:              r.Price,
		DepositAmount:      r.DepositAmount,
		PromotionID:        r.AppliedPromotionID,
		ExpiresAt:          r.ExpiresAt,
		PaymentRef:         r.PaymentRef,
		CancellationReason: r.CancellationReason,
	}
	if key == RKBookingConfirmed {
		state.GiftItem = r.GiftItem
	}
	if r.CancelledBy != nil {
		actor := string(*r.CancelledBy)
		state.CancelledBy = &actor
	}

	return BookingEvent{
		Event:      key,
		Version:    eventVersion,
		OccurredAt: now.UTC(),
		Data:       state,
	}
}
