package delete_facility_config

import (
	"context"
)

type ConfigService interface {
	Delete(ctx context.Context, facilityID int64, sportID *int64, userID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
