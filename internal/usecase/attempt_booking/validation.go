package attempt_booking

import (
	"fmt"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// validateRequest валидирует входные данные и разбирает черновик
func validateRequest(req *Request) (*target, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	if req.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	if err := req.Draft.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// После Validate разбор не падает
	date, _ := req.Draft.ParsedDate()
	slot, _ := req.Draft.ParsedSlot()

	t := &target{
		facilityID: *req.Draft.FacilityID,
		sportID:    *req.Draft.SportID,
		courtID:    *req.Draft.CourtID,
		date:       domain.DateOnly(date),
		slot:       slot,
	}

	if t.facilityID <= 0 || t.sportID <= 0 || t.courtID <= 0 {
		return nil, fmt.Errorf("%w: facilityID, sportID and courtID must be positive", ErrInvalidInput)
	}

	return t, nil
}

// validateCourt проверяет, что корт есть на площадке, работает и принимает вид спорта
func validateCourt(facility *domain.Facility, courtID, sportID int64) error {
	court, ok := facility.FindCourt(courtID)
	if !ok || !court.IsActive {
		return ErrCourtNotFound
	}
	if !court.HostsSport(sportID) {
		return ErrSportNotOffered
	}
	return nil
}

// blockingBlackout возвращает блокировку, закрывающую корт, или nil
func blockingBlackout(blackouts []*domain.BlackoutRule, courtID int64) *domain.BlackoutRule {
	for _, b := range blackouts {
		if b.Covers(courtID) {
			return b
		}
	}
	return nil
}

// holdWindowMinutes окно удержания из конфигурации или значение по умолчанию
func holdWindowMinutes(config *domain.SlotConfig, fallback int) int {
	if config.HoldWindowMinutes > 0 {
		return config.HoldWindowMinutes
	}
	if fallback > 0 {
		return fallback
	}
	return domain.DefaultHoldWindowMinutes
}
