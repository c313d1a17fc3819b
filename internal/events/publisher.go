package events

import (
	"context"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Publisher публикует события брони
// Без брокера (broker == nil) события только логируются: брокер в конфиге можно выключить
type Publisher struct {
	broker  Broker
	metrics Metrics
	logger  Logger
	clock   TimeProvider
}

func NewPublisher(broker Broker, metrics Metrics, logger Logger, clock TimeProvider) *Publisher {
	return &Publisher{
		broker:  broker,
		metrics: metrics,
		logger:  logger,
		clock:   clock,
	}
}

func (p *Publisher) Held(ctx context.Context, r *domain.Reservation) {
	p.publish(ctx, RKBookingHeld, r)
}

func (p *Publisher) Confirmed(ctx context.Context, r *domain.Reservation) {
	p.publish(ctx, RKBookingConfirmed, r)
}

func (p *Publisher) Cancelled(ctx context.Context, r *domain.Reservation) {
	p.publish(ctx, RKBookingCancelled, r)
}

func (p *Publisher) Expired(ctx context.Context, r *domain.Reservation) {
	p.publish(ctx, RKBookingExpired, r)
}

func (p *Publisher) Completed(ctx context.Context, r *domain.Reservation) {
	p.publish(ctx, RKBookingCompleted, r)
}

// publish не возвращает ошибку: смена статуса уже закоммичена,
// потерянное событие видно в логах и метрике events_published_total{result="error"}
func (p *Publisher) publish(ctx context.Context, key string, r *domain.Reservation) {
	if p == nil || r == nil {
		return
	}
	if p.broker == nil {
		p.logger.Info("Events: broker disabled, skip %s reservation_id=%d", key, r.ID)
		return
	}

	err := p.broker.PublishJSON(ctx, key, newBookingEvent(key, r, p.clock.Now()))
	if p.metrics != nil {
		p.metrics.RecordEventPublished(key, err)
	}
	if err != nil {
		p.logger.Error("Events: failed to publish %s reservation_id=%d: %v", key, r.ID, err)
		return
	}

	p.logger.Info("Events: published %s reservation_id=%d", key, r.ID)
}
