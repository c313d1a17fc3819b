package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Clock управляемое время для тестов
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Logger молчаливый логгер
type Logger struct{}

func (Logger) Debug(string, ...interface{}) {}
func (Logger) Info(string, ...interface{})  {}
func (Logger) Warn(string, ...interface{})  {}
func (Logger) Error(string, ...interface{}) {}

// TxManager выполняет функцию без транзакции
// FailNext заставляет следующие вызовы вернуть ошибку до выполнения функции
type TxManager struct {
	mu       sync.Mutex
	failures []error
	calls    int
}

func (m *TxManager) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, errs...)
}

// Calls число начатых транзакций
func (m *TxManager) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.calls++
	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()
	return fn(ctx)
}

// RecordedEvent событие, записанное EventRecorder
type RecordedEvent struct {
	Kind          string
	ReservationID int64
	Status        domain.ReservationStatus
	GiftItem      *string
}

// EventRecorder запоминает события вместо публикации в брокер
type EventRecorder struct {
	mu     sync.Mutex
	events []RecordedEvent
}

func (r *EventRecorder) Held(_ context.Context, res *domain.Reservation) {
	r.record("held", res)
}

func (r *EventRecorder) Confirmed(_ context.Context, res *domain.Reservation) {
	r.record("confirmed", res)
}

func (r *EventRecorder) Cancelled(_ context.Context, res *domain.Reservation) {
	r.record("cancelled", res)
}

func (r *EventRecorder) Expired(_ context.Context, res *domain.Reservation) {
	r.record("expired", res)
}

func (r *EventRecorder) Completed(_ context.Context, res *domain.Reservation) {
	r.record("completed", res)
}

// Events копия записанных событий
func (r *EventRecorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedEvent(nil), r.events...)
}

// Kinds виды записанных событий по порядку
func (r *EventRecorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (r *EventRecorder) record(kind string, res *domain.Reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{
		Kind:          kind,
		ReservationID: res.ID,
		Status:        res.Status,
		GiftItem:      res.GiftItem,
	})
}
