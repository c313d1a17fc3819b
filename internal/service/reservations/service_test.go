package reservations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-CourtBooking/internal/testutil"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

const customerID int64 = 42

type fixture struct {
	store  *testutil.ReservationStore
	events *testutil.EventRecorder
	clock  *testutil.Clock
	svc    *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  testutil.NewReservationStore(),
		events: &testutil.EventRecorder{},
		clock:  testutil.NewClock(testutil.Monday.Add(8 * time.Hour)),
	}
	f.svc = NewService(f.store, testutil.NewFacilityCatalog(), f.events, f.clock, testutil.Logger{})
	return f
}

func (f *fixture) hold(t *testing.T, start, end string, expiresAt time.Time) *domain.Reservation {
	t.Helper()
	r, err := f.store.Create(context.Background(), &domain.Reservation{
		FacilityID: testutil.FacilityID,
		SportID:    testutil.SportID,
		CourtID:    testutil.CourtA,
		CustomerID: customerID,
		Date:       testutil.Monday,
		StartTime:  types.MustTimeString(start),
		EndTime:    types.MustTimeString(end),
		Status:     domain.StatusPending,
		Price:      10000,
		GiftItem:   ptr.Ptr("water bottle"),
		ExpiresAt:  &expiresAt,
	})
	require.NoError(t, err)
	return r
}

func TestConfirm_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(20*time.Minute))

	first, err := f.svc.Confirm(ctx, r.ID, &models.ConfirmRequest{PaymentRef: ptr.Ptr("pay-1")})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), first.Status)
	assert.Nil(t, first.ExpiresAt)

	second, err := f.svc.Confirm(ctx, r.ID, &models.ConfirmRequest{PaymentRef: ptr.Ptr("pay-1")})
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.PaymentRef, second.PaymentRef)

	// событие публикуется только при фактическом переходе
	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "confirmed", events[0].Kind)
	require.NotNil(t, events[0].GiftItem)
	assert.Equal(t, "water bottle", *events[0].GiftItem)
}

func TestConfirm_TerminalStatesAreRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(15*time.Minute))
	f.clock.Advance(16 * time.Minute)

	expired, err := f.store.ExpirePending(ctx, f.clock.Now())
	require.NoError(t, err)
	require.Len(t, expired, 1)

	_, err = f.svc.Confirm(ctx, r.ID, &models.ConfirmRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Confirm(ctx, 9999, &models.ConfirmRequest{})
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestConfirm_ManualRequiresManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(20*time.Minute))

	_, err := f.svc.Confirm(ctx, r.ID, &models.ConfirmRequest{UserID: ptr.Ptr(customerID)})
	assert.ErrorIs(t, err, ErrAccessDenied)

	got, err := f.svc.Confirm(ctx, r.ID, &models.ConfirmRequest{UserID: ptr.Ptr(testutil.ManagerID)})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), got.Status)
}

// Подтверждение и очистка просроченных удержаний бегут наперегонки:
// побеждает ровно один, бронь не остаётся в PENDING.
func TestConfirm_RaceWithExpirySweep(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFixture(t)
		ctx := context.Background()
		now := f.clock.Now()
		r := f.hold(t, "09:00", "10:00", now.Add(-time.Millisecond))

		var (
			wg         sync.WaitGroup
			confirmErr error
			expired    []*domain.Reservation
			sweepErr   error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, confirmErr = f.svc.Confirm(ctx, r.ID, &models.ConfirmRequest{PaymentRef: ptr.Ptr("pay")})
		}()
		go func() {
			defer wg.Done()
			expired, sweepErr = f.store.ExpirePending(ctx, now)
		}()
		wg.Wait()

		require.NoError(t, sweepErr)
		final := f.store.Snapshot(r.ID)
		require.NotNil(t, final)

		switch final.Status {
		case domain.StatusConfirmed:
			assert.NoError(t, confirmErr)
			assert.Empty(t, expired)
		case domain.StatusExpired:
			assert.True(t, errors.Is(confirmErr, domain.ErrInvalidTransition), "confirm must lose: %v", confirmErr)
			assert.Len(t, expired, 1)
		default:
			t.Fatalf("reservation ended in %s", final.Status)
		}
	}
}

func TestCancel_Actors(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels as customer", func(t *testing.T) {
		f := newFixture(t)
		r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(time.Hour))

		got, err := f.svc.Cancel(ctx, r.ID, &models.CancelRequest{UserID: ptr.Ptr(customerID), Reason: ptr.Ptr("rain")})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), got.Status)
		require.NotNil(t, got.CancelledBy)
		assert.Equal(t, string(domain.ActorCustomer), *got.CancelledBy)
		assert.Equal(t, []string{"cancelled"}, f.events.Kinds())
	})

	t.Run("manager cancels as admin", func(t *testing.T) {
		f := newFixture(t)
		r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(time.Hour))

		got, err := f.svc.Cancel(ctx, r.ID, &models.CancelRequest{UserID: ptr.Ptr(testutil.ManagerID)})
		require.NoError(t, err)
		assert.Equal(t, string(domain.ActorAdmin), *got.CancelledBy)
	})

	t.Run("payment failure cancels as system", func(t *testing.T) {
		f := newFixture(t)
		r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(time.Hour))

		got, err := f.svc.Cancel(ctx, r.ID, &models.CancelRequest{Reason: ptr.Ptr("card_declined")})
		require.NoError(t, err)
		assert.Equal(t, string(domain.ActorSystem), *got.CancelledBy)

		// из CANCELLED выхода нет, повтор отклоняется
		_, err = f.svc.Cancel(ctx, r.ID, &models.CancelRequest{Reason: ptr.Ptr("card_declined")})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Len(t, f.events.Events(), 1)
	})

	t.Run("late payment failure keeps confirmed reservation", func(t *testing.T) {
		f := newFixture(t)
		r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(time.Hour))
		_, err := f.svc.Confirm(ctx, r.ID, &models.ConfirmRequest{PaymentRef: ptr.Ptr("pay_1")})
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, r.ID, &models.CancelRequest{Reason: ptr.Ptr("card_declined"), PendingOnly: true})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.StatusConfirmed, f.store.Snapshot(r.ID).Status)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		f := newFixture(t)
		r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(time.Hour))

		_, err := f.svc.Cancel(ctx, r.ID, &models.CancelRequest{UserID: ptr.Ptr(int64(7))})
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.Equal(t, domain.StatusPending, f.store.Snapshot(r.ID).Status)
	})

	t.Run("completed reservation cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(time.Hour))
		_, err := f.svc.Confirm(ctx, r.ID, &models.ConfirmRequest{})
		require.NoError(t, err)
		_, err = f.svc.Complete(ctx, r.ID, testutil.ManagerID)
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, r.ID, &models.CancelRequest{UserID: ptr.Ptr(customerID)})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("reason length is limited", func(t *testing.T) {
		f := newFixture(t)
		r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(time.Hour))
		long := make([]byte, domain.MaxCancellationReasonLength+1)
		for i := range long {
			long[i] = 'x'
		}

		_, err := f.svc.Cancel(ctx, r.ID, &models.CancelRequest{UserID: ptr.Ptr(customerID), Reason: ptr.Ptr(string(long))})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(time.Hour))

	_, err := f.svc.Complete(ctx, r.ID, testutil.ManagerID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "pending cannot be completed")

	_, err = f.svc.Confirm(ctx, r.ID, &models.ConfirmRequest{})
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, r.ID, customerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	got, err := f.svc.Complete(ctx, r.ID, testutil.ManagerID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), got.Status)
	assert.Equal(t, []string{"confirmed", "completed"}, f.events.Kinds())

	_, err = f.svc.Complete(ctx, r.ID, testutil.ManagerID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "completed is terminal")
	assert.Len(t, f.events.Events(), 2)
}

func TestGetByID_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.hold(t, "09:00", "10:00", f.clock.Now().Add(time.Hour))

	got, err := f.svc.GetByID(ctx, r.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, "2030-03-04", got.BookingDate)
	assert.Equal(t, "09:00", got.StartTime)

	_, err = f.svc.GetByID(ctx, r.ID, testutil.ManagerID)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(ctx, r.ID, 7)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestListReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.hold(t, "09:00", "10:00", f.clock.Now().Add(time.Hour))
	f.hold(t, "10:00", "11:00", f.clock.Now().Add(time.Hour))

	mine, err := f.svc.GetUserReservations(ctx, &models.GetUserReservationsRequest{UserID: customerID})
	require.NoError(t, err)
	assert.Len(t, mine.Reservations, 2)

	_, err = f.svc.GetUserReservations(ctx, &models.GetUserReservationsRequest{UserID: customerID, Status: ptr.Ptr("unknown")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	all, err := f.svc.GetFacilityReservations(ctx, &models.GetFacilityReservationsRequest{
		UserID:     testutil.ManagerID,
		FacilityID: testutil.FacilityID,
		Date:       testutil.Monday,
		Status:     ptr.Ptr(string(domain.StatusPending)),
	})
	require.NoError(t, err)
	assert.Len(t, all.Reservations, 2)

	_, err = f.svc.GetFacilityReservations(ctx, &models.GetFacilityReservationsRequest{
		UserID:     customerID,
		FacilityID: testutil.FacilityID,
		Date:       testutil.Monday,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}
