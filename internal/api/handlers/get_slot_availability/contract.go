package get_slot_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

type AvailabilityService interface {
	GetSlotAvailability(ctx context.Context, facilityID, sportID int64, date time.Time, slot domain.Slot) (*domain.SlotAvailability, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
