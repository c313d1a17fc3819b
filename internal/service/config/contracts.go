package config

import (
	"context"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// ConfigRepository интерфейс репозитория конфигурации слотов
type ConfigRepository interface {
	GetByFacilityAndSport(ctx context.Context, facilityID int64, sportID *int64) (*domain.SlotConfig, error)
	GetConfigWithHierarchy(ctx context.Context, facilityID int64, sportID *int64) (*domain.SlotConfig, error)
	ListByFacility(ctx context.Context, facilityID int64) ([]*domain.SlotConfig, error)
	Upsert(ctx context.Context, config *domain.SlotConfig) (*domain.SlotConfig, error)
	DeleteByFacilityAndSport(ctx context.Context, facilityID int64, sportID *int64) error
}

// FacilityClient интерфейс клиента справочника площадок
type FacilityClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*domain.Facility, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
