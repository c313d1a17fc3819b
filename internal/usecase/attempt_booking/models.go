package attempt_booking

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// Request модель запроса на бронирование
// Draft должен быть заполнен целиком: дата, площадка, слот и корт
type Request struct {
	CustomerID int64
	Draft      domain.BookingDraft
}

// Response модель ответа с созданной бронью в статусе pending
type Response struct {
	ID         int64
	FacilityID int64
	SportID    int64
	CourtID    int64
	CustomerID int64
	Date       time.Time
	StartTime  types.TimeString
	EndTime    types.TimeString
	Status     string

	// Суммы в минимальных единицах валюты
	Price              int64
	DepositAmount      int64
	AppliedPromotionID *int64
	GiftItem           *string

	ExpiresAt time.Time // До этого момента бронь ждёт оплату
	CreatedAt time.Time
}

// target разобранный черновик
type target struct {
	facilityID int64
	sportID    int64
	courtID    int64
	date       time.Time
	slot       domain.Slot
}
