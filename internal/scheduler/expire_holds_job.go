package scheduler

import (
	"context"
	"time"
)

const expireHoldsJobName = "expire_pending_holds"

// HoldSweeper use case освобождения истёкших удержаний
type HoldSweeper interface {
	Execute(ctx context.Context, now time.Time) (int, error)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// SweepSettings политика запуска и повторов задачи
type SweepSettings struct {
	Cron       string
	MaxRetries int           // повторы после неудачной попытки
	RetryDelay time.Duration // пауза между попытками
	Timeout    time.Duration // общий лимит одного запуска
}

// ExpireHoldsJob периодическая очистка pending броней с истёкшим expires_at
type ExpireHoldsJob struct {
	sweeper  HoldSweeper
	clock    TimeProvider
	settings SweepSettings
	logger   Logger
}

func NewExpireHoldsJob(sweeper HoldSweeper, clock TimeProvider, settings SweepSettings, logger Logger) *ExpireHoldsJob {
	return &ExpireHoldsJob{
		sweeper:  sweeper,
		clock:    clock,
		settings: settings,
		logger:   logger,
	}
}

// Register добавляет задачу в планировщик
func (j *ExpireHoldsJob) Register(s *Service) error {
	_, err := s.AddJob(expireHoldsJobName, j.settings.Cron, func() {
		ctx := context.Background()
		if j.settings.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, j.settings.Timeout)
			defer cancel()
		}
		_, _ = j.Run(ctx)
	})
	return err
}

// Run один запуск с повторами
// Каждая попытка берёт свежее now, так что повтор не пропускает удержания, истёкшие за паузу
func (j *ExpireHoldsJob) Run(ctx context.Context) (int, error) {
	var lastErr error

	for attempt := 0; attempt <= j.settings.MaxRetries; attempt++ {
		if attempt > 0 {
			j.logger.Warn("ExpireHoldsJob: attempt %d/%d failed: %v", attempt, j.settings.MaxRetries+1, lastErr)
			select {
			case <-ctx.Done():
				j.logger.Error("ExpireHoldsJob: giving up: %v", ctx.Err())
				return 0, ctx.Err()
			case <-time.After(j.settings.RetryDelay):
			}
		}

		count, err := j.sweeper.Execute(ctx, j.clock.Now())
		if err == nil {
			if count > 0 {
				j.logger.Info("ExpireHoldsJob: released %d holds", count)
			}
			return count, nil
		}
		lastErr = err
	}

	j.logger.Error("ExpireHoldsJob: all %d attempts failed: %v", j.settings.MaxRetries+1, lastErr)
	return 0, lastErr
}
