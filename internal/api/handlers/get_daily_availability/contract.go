package get_daily_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/service/availability/models"
)

type AvailabilityService interface {
	GetDailyAvailability(ctx context.Context, facilityID, sportID int64, date time.Time) (*models.DailyAvailability, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
