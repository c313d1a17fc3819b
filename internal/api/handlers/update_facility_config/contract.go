package update_facility_config

import (
	"context"

	"github.com/m04kA/SMC-CourtBooking/internal/service/config/models"
)

type ConfigService interface {
	Update(ctx context.Context, facilityID int64, req *models.UpdateConfigRequest) (*models.ConfigResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
