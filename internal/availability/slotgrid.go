package availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// GenerateSlots строит сетку слотов на дату по недельному шаблону площадки
//
// Слоты полуоткрытые [start, end) и идут подряд от открытия до закрытия с шагом granularityMinutes.
// Выходной день даёт пустую сетку.
// Если до закрытия остаётся меньше одного шага, последний неполный слот отбрасывается:
// 08:00-11:30 с шагом 60 даёт 08-09, 09-10, 10-11, а 11:00-11:30 в сетку не попадает.
func GenerateSlots(template *domain.WeeklyTemplate, date time.Time, granularityMinutes int) ([]domain.Slot, error) {
	if template == nil {
		return nil, fmt.Errorf("%w: weekly template is missing", domain.ErrConfiguration)
	}
	if granularityMinutes <= 0 {
		return nil, fmt.Errorf("%w: slot granularity must be positive, got %d", domain.ErrConfiguration, granularityMinutes)
	}

	day := template.ForDate(date)
	if !day.IsOpen {
		return []domain.Slot{}, nil
	}
	if err := day.Validate(); err != nil {
		return nil, fmt.Errorf("facility %d, %s: %w", template.FacilityID, date.Weekday(), err)
	}

	slots := make([]domain.Slot, 0)
	current := day.OpenTime

	for current.IsBefore(day.CloseTime) {
		end, err := current.AddMinutes(granularityMinutes)
		if err != nil {
			// шаг выходит за 24:00, значит и за закрытие
			break
		}
		if end.IsAfter(day.CloseTime) {
			break
		}

		slots = append(slots, domain.Slot{Start: current, End: end})
		current = end
	}

	return slots, nil
}

// ContainsSlot проверяет, что слот совпадает с одним из слотов сетки
func ContainsSlot(grid []domain.Slot, slot domain.Slot) bool {
	for _, s := range grid {
		if s.Start.Equal(slot.Start) && s.End.Equal(slot.End) {
			return true
		}
	}
	return false
}
