package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// ConfirmRequest запрос на подтверждение брони
// UserID == nil - сигнал платёжного сервиса, иначе подтверждает менеджер площадки
type ConfirmRequest struct {
	UserID     *int64  `json:"userId,omitempty"`
	PaymentRef *string `json:"paymentRef,omitempty"`
}

// CancelRequest запрос на отмену брони
// UserID == nil - отмена системой (неуспешный платёж)
// PendingOnly - отменить только неоплаченное удержание, подтверждённую бронь не трогать
type CancelRequest struct {
	UserID      *int64  `json:"userId,omitempty"`
	Reason      *string `json:"reason,omitempty"`
	PendingOnly bool    `json:"-"`
}

// GetUserReservationsRequest запрос на получение броней пользователя
type GetUserReservationsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetFacilityReservationsRequest запрос менеджера на брони площадки за дату
type GetFacilityReservationsRequest struct {
	UserID     int64     `json:"userId"`
	FacilityID int64     `json:"facilityId"`
	Date       time.Time `json:"date"`
	CourtID    *int64    `json:"courtId,omitempty"`  // Фильтр по корту (опционально)
	Status     *string   `json:"status,omitempty"`   // Фильтр по статусу (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetFacilityReservationsRequest) ToDomainFilter() (domain.ReservationFilter, error) {
	filter := domain.ReservationFilter{
		FacilityID: r.FacilityID,
		Date:       domain.DateOnly(r.Date),
	}

	if r.CourtID != nil {
		filter.CourtIDs = []int64{*r.CourtID}
	}

	if r.Status != nil {
		status, err := ToDomainReservationStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Statuses = []domain.ReservationStatus{status}
	}

	return filter, nil
}

// Response модели

// ReservationResponse ответ с данными брони
// Суммы в минимальных единицах валюты
type ReservationResponse struct {
	ID          int64  `json:"id"`
	FacilityID  int64  `json:"facilityId"`
	SportID     int64  `json:"sportId"`
	CourtID     int64  `json:"courtId"`
	CustomerID  int64  `json:"customerId"`
	BookingDate string `json:"bookingDate"` // "2025-10-15"
	StartTime   string `json:"startTime"`   // "10:00"
	EndTime     string `json:"endTime"`     // "11:00"
	Status      string `json:"status"`

	Price              int64   `json:"price"`
	DepositAmount      int64   `json:"depositAmount"`
	AppliedPromotionID *int64  `json:"appliedPromotionId,omitempty"`
	GiftItem           *string `json:"giftItem,omitempty"`

	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	PaymentRef        *string    `json:"paymentRef,omitempty"`
	OriginRecurringID *int64     `json:"originRecurringId,omitempty"`

	CancelledBy        *string `json:"cancelledBy,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком броней
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:                 r.ID,
		FacilityID:         r.FacilityID,
		SportID:            r.SportID,
		CourtID:            r.CourtID,
		CustomerID:         r.CustomerID,
		BookingDate:        r.Date.Format(domain.DateFormat),
		StartTime:          r.StartTime.String(),
		EndTime:            r.EndTime.String(),
		Status:             string(r.Status),
		Price:              r.Price,
		DepositAmount:      r.DepositAmount,
		AppliedPromotionID: r.AppliedPromotionID,
		GiftItem:           r.GiftItem,
		ExpiresAt:          r.ExpiresAt,
		PaymentRef:         r.PaymentRef,
		OriginRecurringID:  r.OriginRecurringID,
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}

	if r.CancelledBy != nil {
		actor := string(*r.CancelledBy)
		resp.CancelledBy = &actor
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if r.CancelledAt != nil {
		cancelledStr := r.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, r := range reservations {
		if item := FromDomainReservation(r); item != nil {
			resp.Reservations = append(resp.Reservations, *item)
		}
	}

	return resp
}

// ToDomainReservationStatus конвертирует строку в domain.ReservationStatus с валидацией
func ToDomainReservationStatus(status string) (domain.ReservationStatus, error) {
	s := domain.ReservationStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
