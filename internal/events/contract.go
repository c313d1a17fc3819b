package events

import (
	"context"
	"time"
)

// Broker транспорт сообщений, реализуется mq.Publisher
type Broker interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// Metrics счётчик опубликованных событий
type Metrics interface {
	RecordEventPublished(routingKey string, err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}
