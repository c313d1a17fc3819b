package expire_holds

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	ExpirePending(ctx context.Context, now time.Time) ([]*domain.Reservation, error)
}

// EventPublisher события об истёкших удержаниях
type EventPublisher interface {
	Expired(ctx context.Context, r *domain.Reservation)
}

// Metrics счётчик освобождённых слотов
type Metrics interface {
	RecordHoldsExpired(count int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
