package attempt_booking

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	attemptBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/attempt_booking"
)

// AttemptBookingRequest HTTP request model
// Черновик мастера бронирования, заполненный до выбора корта
type AttemptBookingRequest struct {
	Draft domain.BookingDraft `json:"draft"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *AttemptBookingRequest) ToUseCaseRequest(customerID int64) *attemptBooking.Request {
	return &attemptBooking.Request{
		CustomerID: customerID,
		Draft:      r.Draft,
	}
}

// HoldResponse HTTP response model
type HoldResponse struct {
	ID                 int64     `json:"id"`
	FacilityID         int64     `json:"facilityId"`
	SportID            int64     `json:"sportId"`
	CourtID            int64     `json:"courtId"`
	CustomerID         int64     `json:"customerId"`
	BookingDate        string    `json:"bookingDate"`
	StartTime          string    `json:"startTime"`
	EndTime            string    `json:"endTime"`
	Status             string    `json:"status"`
	Price              int64     `json:"price"`
	DepositAmount      int64     `json:"depositAmount"`
	AppliedPromotionID *int64    `json:"appliedPromotionId,omitempty"`
	GiftItem           *string   `json:"giftItem,omitempty"`
	ExpiresAt          time.Time `json:"expiresAt"`
	CreatedAt          time.Time `json:"createdAt"`
}

// SlotTakenResponse тело ответа 409: слот занят, актуальная доступность для повторного выбора
type SlotTakenResponse struct {
	Error        string                             `json:"error"`
	CourtID      int64                              `json:"courtId"`
	Date         string                             `json:"date"`
	Availability *handlers.SlotAvailabilityResponse `json:"availability,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *attemptBooking.Response) *HoldResponse {
	return &HoldResponse{
		ID:                 resp.ID,
		FacilityID:         resp.FacilityID,
		SportID:            resp.SportID,
		CourtID:            resp.CourtID,
		CustomerID:         resp.CustomerID,
		BookingDate:        resp.Date.Format(domain.DateFormat),
		StartTime:          resp.StartTime.String(),
		EndTime:            resp.EndTime.String(),
		Status:             resp.Status,
		Price:              resp.Price,
		DepositAmount:      resp.DepositAmount,
		AppliedPromotionID: resp.AppliedPromotionID,
		GiftItem:           resp.GiftItem,
		ExpiresAt:          resp.ExpiresAt,
		CreatedAt:          resp.CreatedAt,
	}
}

func fromSlotTaken(err *attemptBooking.SlotTakenError) *SlotTakenResponse {
	return &SlotTakenResponse{
		Error:        msgSlotTaken,
		CourtID:      err.CourtID,
		Date:         err.Date,
		Availability: handlers.FromDomainSlotAvailability(err.Availability),
	}
}
