package expire_holds

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// UseCase возвращает в свободный пул слоты, удержание которых истекло без оплаты
type UseCase struct {
	reservationRepo ReservationRepository
	events          EventPublisher
	metrics         Metrics
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(reservationRepo ReservationRepository, events EventPublisher, metrics Metrics, logger Logger) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		events:          events,
		metrics:         metrics,
		logger:          logger,
	}
}

// Execute переводит в expired все pending брони с expires_at < now
// Обновление условное, поэтому параллельное подтверждение оплаты не теряется:
// выигрывает тот, чьё условие ещё выполняется в момент записи
func (uc *UseCase) Execute(ctx context.Context, now time.Time) (int, error) {
	uc.logger.Info("ExpireHolds: sweeping holds expired before %s", now.Format(time.RFC3339))

	expired, err := uc.reservationRepo.ExpirePending(ctx, now)
	if err != nil {
		uc.logger.Error("ExpireHolds: repository error: %v", err)
		return 0, fmt.Errorf("%w: ExpireHolds - repository error: %w", ErrInternal, err)
	}

	if uc.metrics != nil {
		uc.metrics.RecordHoldsExpired(len(expired))
	}

	for _, r := range expired {
		uc.logger.Info("ExpireHolds: reservation id=%d released court=%d on %s at %s-%s",
			r.ID, r.CourtID, r.Date.Format(domain.DateFormat), r.StartTime, r.EndTime)
		if uc.events != nil {
			uc.events.Expired(ctx, r)
		}
	}

	uc.logger.Info("ExpireHolds: released %d holds", len(expired))
	return len(expired), nil
}
