package list_facility_configs

import (
	"context"

	"github.com/m04kA/SMC-CourtBooking/internal/service/config/models"
)

type ConfigService interface {
	List(ctx context.Context, facilityID int64, userID int64) (*models.ConfigListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
