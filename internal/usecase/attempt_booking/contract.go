package attempt_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/pricing"
)

// ReservationRepository интерфейс репозитория броней (запись)
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
	ListActiveOverlapping(ctx context.Context, courtID int64, date time.Time, slot domain.Slot) ([]*domain.Reservation, error)
	MaterializeRecurring(ctx context.Context, courtID int64, date time.Time, now time.Time) (int64, error)
}

// ConfigRepository интерфейс репозитория конфигурации слотов
type ConfigRepository interface {
	GetConfigWithHierarchy(ctx context.Context, facilityID int64, sportID *int64) (*domain.SlotConfig, error)
}

// ScheduleRepository интерфейс календаря площадки
type ScheduleRepository interface {
	GetWeeklyTemplate(ctx context.Context, facilityID int64) (*domain.WeeklyTemplate, error)
	ListBlackouts(ctx context.Context, facilityID int64, date time.Time) ([]*domain.BlackoutRule, error)
}

// RatesRepository интерфейс тарифной сетки
type RatesRepository interface {
	ListRateRules(ctx context.Context, facilityID, sportID int64) ([]*domain.RateRule, error)
	ListActivePromotions(ctx context.Context, facilityID int64) ([]*domain.Promotion, error)
}

// FacilityClient интерфейс справочника площадок
type FacilityClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*domain.Facility, error)
}

// PriceResolver расчёт цены слота
type PriceResolver interface {
	Resolve(in pricing.Input) (*domain.Quote, error)
}

// AvailabilityReader свежая доступность слота для ответа на конфликт
type AvailabilityReader interface {
	GetSlotAvailability(ctx context.Context, facilityID, sportID int64, date time.Time, slot domain.Slot) (*domain.SlotAvailability, error)
}

// EventPublisher события о новой брони
type EventPublisher interface {
	Held(ctx context.Context, r *domain.Reservation)
}

// Metrics счётчик попыток бронирования
type Metrics interface {
	RecordBookingAttempt(outcome string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
