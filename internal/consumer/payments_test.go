package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/events"
	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations"
	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-CourtBooking/internal/testutil"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// acknowledger запоминает решение по сообщению
type acknowledger struct {
	mu      sync.Mutex
	acked   int
	nacked  int
	requeue bool
}

func (a *acknowledger) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked++
	return nil
}

func (a *acknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *acknowledger) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

type channelSource struct {
	ch chan amqp.Delivery
}

func (s *channelSource) Deliveries(context.Context) (<-chan amqp.Delivery, error) {
	return s.ch, nil
}

type brokenService struct{}

func (brokenService) Confirm(context.Context, int64, *models.ConfirmRequest) (*models.ReservationResponse, error) {
	return nil, reservations.ErrInternal
}

func (brokenService) Cancel(context.Context, int64, *models.CancelRequest) (*models.ReservationResponse, error) {
	return nil, reservations.ErrInternal
}

type fixture struct {
	store    *testutil.ReservationStore
	consumer *PaymentConsumer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewReservationStore()
	clock := testutil.NewClock(testutil.Monday.Add(7 * time.Hour))
	svc := reservations.NewService(store, testutil.NewFacilityCatalog(), &testutil.EventRecorder{}, clock, testutil.Logger{})
	return &fixture{
		store:    store,
		consumer: NewPaymentConsumer(nil, svc, testutil.Logger{}),
	}
}

func (f *fixture) hold(t *testing.T) *domain.Reservation {
	t.Helper()
	expiresAt := testutil.Monday.Add(8 * time.Hour)
	r, err := f.store.Create(context.Background(), &domain.Reservation{
		FacilityID: testutil.FacilityID,
		SportID:    testutil.SportID,
		CourtID:    testutil.CourtA,
		CustomerID: 42,
		Date:       testutil.Monday,
		StartTime:  types.MustTimeString("09:00"),
		EndTime:    types.MustTimeString("10:00"),
		Status:     domain.StatusPending,
		ExpiresAt:  &expiresAt,
	})
	require.NoError(t, err)
	return r
}

func delivery(ack *acknowledger, key, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, RoutingKey: key, Body: []byte(body)}
}

func TestHandle_PaymentPaidConfirms(t *testing.T) {
	f := newFixture(t)
	r := f.hold(t)
	ack := &acknowledger{}

	body := `{"event":"payment.paid","version":1,"data":{"payment_id":"pay_77","reservation_id":1,"amount":10000,"currency":"USD"}}`
	f.consumer.Handle(context.Background(), delivery(ack, events.RKPaymentPaid, body))

	assert.Equal(t, 1, ack.acked)
	got := f.store.Snapshot(r.ID)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	require.NotNil(t, got.PaymentRef)
	assert.Equal(t, "pay_77", *got.PaymentRef)

	// Дубликат сигнала подтверждается без ошибки
	f.consumer.Handle(context.Background(), delivery(ack, events.RKPaymentPaid, body))
	assert.Equal(t, 2, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestHandle_PaymentFailedReleasesHold(t *testing.T) {
	f := newFixture(t)
	r := f.hold(t)
	ack := &acknowledger{}

	body := `{"event":"payment.failed","version":1,"data":{"payment_id":"pay_78","reservation_id":1,"failure_code":"card_declined"}}`
	f.consumer.Handle(context.Background(), delivery(ack, events.RKPaymentFailed, body))

	assert.Equal(t, 1, ack.acked)
	got := f.store.Snapshot(r.ID)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	require.NotNil(t, got.CancelledBy)
	assert.Equal(t, domain.ActorSystem, *got.CancelledBy)
	require.NotNil(t, got.CancellationReason)
	assert.Equal(t, "card_declined", *got.CancellationReason)

	// дубликат сигнала отклоняется сервисом и снимается с очереди
	f.consumer.Handle(context.Background(), delivery(ack, events.RKPaymentFailed, body))
	assert.Equal(t, 2, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestHandle_PermanentFailuresAreAcked(t *testing.T) {
	tests := []struct {
		name string
		key  string
		body string
	}{
		{name: "malformed json", key: events.RKPaymentPaid, body: `{"data":`},
		{name: "missing reservation", key: events.RKPaymentPaid, body: `{"data":{"payment_id":"p"}}`},
		{name: "unknown reservation", key: events.RKPaymentPaid, body: `{"data":{"payment_id":"p","reservation_id":999}}`},
		{name: "unknown key", key: "payment.refunded", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ack := &acknowledger{}
			f.consumer.Handle(context.Background(), delivery(ack, tt.key, tt.body))
			assert.Equal(t, 1, ack.acked)
			assert.Zero(t, ack.nacked)
		})
	}
}

func TestHandle_PaymentAfterExpiryIsDropped(t *testing.T) {
	f := newFixture(t)
	r := f.hold(t)
	_, err := f.store.ExpirePending(context.Background(), testutil.Monday.Add(9*time.Hour))
	require.NoError(t, err)

	ack := &acknowledger{}
	f.consumer.Handle(context.Background(), delivery(ack, events.RKPaymentPaid,
		`{"data":{"payment_id":"late","reservation_id":1}}`))

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, domain.StatusExpired, f.store.Snapshot(r.ID).Status)
}

func TestHandle_InternalErrorRequeues(t *testing.T) {
	c := NewPaymentConsumer(nil, brokenService{}, testutil.Logger{})
	ack := &acknowledger{}

	c.Handle(context.Background(), delivery(ack, events.RKPaymentPaid, `{"data":{"payment_id":"p","reservation_id":1}}`))

	assert.Zero(t, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.True(t, ack.requeue)
}

func TestRun_StopsWhenChannelCloses(t *testing.T) {
	f := newFixture(t)
	f.hold(t)
	source := &channelSource{ch: make(chan amqp.Delivery, 1)}
	ack := &acknowledger{}
	source.ch <- delivery(ack, events.RKPaymentPaid, `{"data":{"payment_id":"p","reservation_id":1}}`)
	close(source.ch)

	svc := f.consumer.reservations
	c := NewPaymentConsumer(source, svc, testutil.Logger{})
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, 1, ack.acked)
}

func TestRun_SourceError(t *testing.T) {
	c := NewPaymentConsumer(failingSource{}, brokenService{}, testutil.Logger{})
	require.Error(t, c.Run(context.Background()))
}

type failingSource struct{}

func (failingSource) Deliveries(context.Context) (<-chan amqp.Delivery, error) {
	return nil, errors.New("channel closed")
}
