package consumer

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations/models"
)

// DeliverySource очередь входящих сообщений, реализуется mq.Consumer
type DeliverySource interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
}

// ReservationService переходы брони по сигналам платёжного сервиса
type ReservationService interface {
	Confirm(ctx context.Context, id int64, req *models.ConfirmRequest) (*models.ReservationResponse, error)
	Cancel(ctx context.Context, id int64, req *models.CancelRequest) (*models.ReservationResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
