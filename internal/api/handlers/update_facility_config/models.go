package update_facility_config

import (
	"github.com/m04kA/SMC-CourtBooking/internal/service/config/models"
)

// UpdateFacilityConfigRequest HTTP request model
type UpdateFacilityConfigRequest struct {
	SportID                 *int64 `json:"sportId,omitempty"`
	SlotDurationMinutes     *int   `json:"slotDurationMinutes,omitempty"`
	HoldWindowMinutes       *int   `json:"holdWindowMinutes,omitempty"`
	AdvanceBookingDays      *int   `json:"advanceBookingDays,omitempty"`
	MinBookingNoticeMinutes *int   `json:"minBookingNoticeMinutes,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateFacilityConfigRequest) ToServiceRequest(userID int64) *models.UpdateConfigRequest {
	return &models.UpdateConfigRequest{
		UserID:                  userID,
		SportID:                 r.SportID,
		SlotDurationMinutes:     r.SlotDurationMinutes,
		HoldWindowMinutes:       r.HoldWindowMinutes,
		AdvanceBookingDays:      r.AdvanceBookingDays,
		MinBookingNoticeMinutes: r.MinBookingNoticeMinutes,
	}
}
