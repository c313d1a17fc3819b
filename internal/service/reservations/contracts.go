package reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
	ListByCustomer(ctx context.Context, customerID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error)
	Confirm(ctx context.Context, id int64, paymentRef *string, now time.Time) (*domain.Reservation, error)
	Cancel(ctx context.Context, id int64, from []domain.ReservationStatus, actor domain.Actor, reason *string, now time.Time) (*domain.Reservation, error)
	Complete(ctx context.Context, id int64, now time.Time) (*domain.Reservation, error)
}

// FacilityClient интерфейс справочника площадок
type FacilityClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*domain.Facility, error)
}

// EventPublisher события о смене состояния брони
type EventPublisher interface {
	Confirmed(ctx context.Context, r *domain.Reservation)
	Cancelled(ctx context.Context, r *domain.Reservation)
	Completed(ctx context.Context, r *domain.Reservation)
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
