package get_slot_availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// slotQuery разобранные query параметры
type slotQuery struct {
	date time.Time
	slot domain.Slot
}

// parseQuery разбирает date, startTime и endTime
func parseQuery(dateStr, startStr, endStr string) (*slotQuery, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	start, err := types.NewTimeStringFromString(startStr)
	if err != nil {
		return nil, fmt.Errorf("startTime: %w", err)
	}

	end, err := types.NewTimeStringFromString(endStr)
	if err != nil {
		return nil, fmt.Errorf("endTime: %w", err)
	}

	slot := domain.Slot{Start: start, End: end}
	if err := slot.Validate(); err != nil {
		return nil, err
	}

	return &slotQuery{date: date, slot: slot}, nil
}
