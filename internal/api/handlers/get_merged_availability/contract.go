package get_merged_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/service/availability/models"
)

type AvailabilityService interface {
	GetMergedAvailability(ctx context.Context, date time.Time, candidates []models.Candidate) (*models.MergedAvailability, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
