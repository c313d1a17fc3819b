package get_daily_availability

import (
	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability/models"
)

// DailyAvailabilityResponse HTTP response model
type DailyAvailabilityResponse struct {
	Date                string                              `json:"date"`
	FacilityID          int64                               `json:"facilityId"`
	SportID             int64                               `json:"sportId"`
	SlotDurationMinutes int                                 `json:"slotDurationMinutes"`
	Slots               []handlers.SlotAvailabilityResponse `json:"slots"`
}

// FromServiceResponse конвертирует ответ сервиса в HTTP response
func FromServiceResponse(resp *models.DailyAvailability) *DailyAvailabilityResponse {
	slots := make([]handlers.SlotAvailabilityResponse, 0, len(resp.Slots))
	for i := range resp.Slots {
		slots = append(slots, *handlers.FromDomainSlotAvailability(&resp.Slots[i]))
	}

	return &DailyAvailabilityResponse{
		Date:                resp.Date.Format(domain.DateFormat),
		FacilityID:          resp.FacilityID,
		SportID:             resp.SportID,
		SlotDurationMinutes: resp.SlotDurationMinutes,
		Slots:               slots,
	}
}
