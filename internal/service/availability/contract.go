package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/pricing"
)

// FacilityClient интерфейс справочника площадок
type FacilityClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*domain.Facility, error)
}

// ConfigRepository интерфейс репозитория конфигурации бронирования
type ConfigRepository interface {
	GetConfigWithHierarchy(ctx context.Context, facilityID int64, sportID *int64) (*domain.SlotConfig, error)
}

// ScheduleRepository интерфейс календарных правил площадки
type ScheduleRepository interface {
	GetWeeklyTemplate(ctx context.Context, facilityID int64) (*domain.WeeklyTemplate, error)
	ListBlackouts(ctx context.Context, facilityID int64, date time.Time) ([]*domain.BlackoutRule, error)
	ListRecurring(ctx context.Context, facilityID int64, weekday time.Weekday, courtID *int64) ([]*domain.RecurringReservation, error)
}

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
}

// RatesRepository интерфейс таблицы тарифов
type RatesRepository interface {
	ListRateRules(ctx context.Context, facilityID, sportID int64) ([]*domain.RateRule, error)
	ListActivePromotions(ctx context.Context, facilityID int64) ([]*domain.Promotion, error)
}

// PriceResolver расчёт цены слота
type PriceResolver interface {
	Resolve(in pricing.Input) (*domain.Quote, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
