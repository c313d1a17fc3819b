package confirm_reservation

import (
	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations/models"
)

// ConfirmReservationRequest HTTP request model
// Ручное подтверждение менеджером, например при оплате на стойке
type ConfirmReservationRequest struct {
	PaymentRef *string `json:"paymentRef,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *ConfirmReservationRequest) ToServiceRequest(userID int64) *models.ConfirmRequest {
	return &models.ConfirmRequest{
		UserID:     &userID,
		PaymentRef: r.PaymentRef,
	}
}
