package expire_holds

import (
	"context"
	"time"
)

type ExpireHoldsUseCase interface {
	Execute(ctx context.Context, now time.Time) (int, error)
}

type TimeProvider interface {
	Now() time.Time
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
