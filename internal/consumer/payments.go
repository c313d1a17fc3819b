package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/events"
	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations"
	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations/models"
)

// ErrBadMessage сообщение нельзя обработать ни сейчас, ни при повторе
var ErrBadMessage = errors.New("consumer: bad message")

// PaymentConsumer применяет сигналы платёжного сервиса к броням
// payment.paid -> подтверждение, payment.failed -> отмена неоплаченного удержания системой
type PaymentConsumer struct {
	source       DeliverySource
	reservations ReservationService
	logger       Logger
}

func NewPaymentConsumer(source DeliverySource, reservations ReservationService, logger Logger) *PaymentConsumer {
	return &PaymentConsumer{
		source:       source,
		reservations: reservations,
		logger:       logger,
	}
}

// Run читает очередь до отмены ctx или закрытия канала
func (c *PaymentConsumer) Run(ctx context.Context) error {
	msgs, err := c.source.Deliveries(ctx)
	if err != nil {
		return fmt.Errorf("consume payments: %w", err)
	}

	c.logger.Info("PaymentConsumer: started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("PaymentConsumer: stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				c.logger.Warn("PaymentConsumer: delivery channel closed")
				return nil
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle обрабатывает одно сообщение и подтверждает его
// Внутренние ошибки возвращают сообщение в очередь, остальное подтверждается:
// повтор не изменит исход
func (c *PaymentConsumer) Handle(ctx context.Context, d amqp.Delivery) {
	err := c.process(ctx, d.RoutingKey, d.Body)

	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrBadMessage),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, reservations.ErrReservationNotFound),
		errors.Is(err, reservations.ErrInvalidInput):
		c.logger.Warn("PaymentConsumer: drop key=%s: %v", d.RoutingKey, err)
		_ = d.Ack(false)
	default:
		c.logger.Error("PaymentConsumer: handle error key=%s: %v -> Nack&requeue", d.RoutingKey, err)
		_ = d.Nack(false, true)
	}
}

func (c *PaymentConsumer) process(ctx context.Context, key string, body []byte) error {
	switch key {
	case events.RKPaymentPaid:
		var ev events.PaymentPaid
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("%w: %v", ErrBadMessage, err)
		}
		if ev.Data.ReservationID <= 0 {
			return fmt.Errorf("%w: reservation_id is required", ErrBadMessage)
		}

		paymentRef := ev.Data.PaymentID
		_, err := c.reservations.Confirm(ctx, ev.Data.ReservationID, &models.ConfirmRequest{PaymentRef: &paymentRef})
		if err != nil {
			return err
		}
		c.logger.Info("PaymentConsumer: reservation id=%d paid (payment=%s)", ev.Data.ReservationID, ev.Data.PaymentID)
		return nil

	case events.RKPaymentFailed:
		var ev events.PaymentFailed
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("%w: %v", ErrBadMessage, err)
		}
		if ev.Data.ReservationID <= 0 {
			return fmt.Errorf("%w: reservation_id is required", ErrBadMessage)
		}

		reason := "payment_failed"
		if ev.Data.FailureCode != "" {
			reason = ev.Data.FailureCode
		}
		if len(reason) > domain.MaxCancellationReasonLength {
			reason = reason[:domain.MaxCancellationReasonLength]
		}
		_, err := c.reservations.Cancel(ctx, ev.Data.ReservationID, &models.CancelRequest{
			Reason:      &reason,
			PendingOnly: true,
		})
		if err != nil {
			return err
		}
		c.logger.Info("PaymentConsumer: reservation id=%d released after failed payment (%s)", ev.Data.ReservationID, reason)
		return nil
	}

	return fmt.Errorf("%w: unknown routing key %q", ErrBadMessage, key)
}
