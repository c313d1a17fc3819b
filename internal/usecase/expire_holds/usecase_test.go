package expire_holds

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/testutil"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

type expiredCounter struct {
	total int
}

func (c *expiredCounter) RecordHoldsExpired(count int) {
	c.total += count
}

type failingRepo struct{}

func (failingRepo) ExpirePending(context.Context, time.Time) ([]*domain.Reservation, error) {
	return nil, errors.New("connection reset")
}

func hold(t *testing.T, store *testutil.ReservationStore, courtID int64, start, end string, expiresAt time.Time) *domain.Reservation {
	t.Helper()
	r, err := store.Create(context.Background(), &domain.Reservation{
		FacilityID: testutil.FacilityID,
		SportID:    testutil.SportID,
		CourtID:    courtID,
		CustomerID: 42,
		Date:       testutil.Monday,
		StartTime:  types.MustTimeString(start),
		EndTime:    types.MustTimeString(end),
		Status:     domain.StatusPending,
		ExpiresAt:  &expiresAt,
	})
	require.NoError(t, err)
	return r
}

func TestExecute_ReleasesOnlyExpiredHolds(t *testing.T) {
	store := testutil.NewReservationStore()
	events := &testutil.EventRecorder{}
	counter := &expiredCounter{}
	uc := NewUseCase(store, events, counter, testutil.Logger{})

	now := testutil.Monday.Add(7 * time.Hour)
	stale := hold(t, store, testutil.CourtA, "08:00", "09:00", now.Add(-time.Minute))
	fresh := hold(t, store, testutil.CourtB, "08:00", "09:00", now.Add(time.Minute))
	paid := hold(t, store, testutil.CourtA, "09:00", "10:00", now.Add(-time.Minute))
	_, err := store.Confirm(context.Background(), paid.ID, nil, now.Add(-2*time.Minute))
	require.NoError(t, err)

	count, err := uc.Execute(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, counter.total)

	assert.Equal(t, domain.StatusExpired, store.Snapshot(stale.ID).Status)
	assert.Equal(t, domain.StatusPending, store.Snapshot(fresh.ID).Status)
	assert.Equal(t, domain.StatusConfirmed, store.Snapshot(paid.ID).Status)

	require.Len(t, events.Events(), 1)
	assert.Equal(t, "expired", events.Events()[0].Kind)
	assert.Equal(t, stale.ID, events.Events()[0].ReservationID)
}

func TestExecute_ExpiredSlotCanBeBookedAgain(t *testing.T) {
	store := testutil.NewReservationStore()
	uc := NewUseCase(store, nil, nil, testutil.Logger{})

	now := testutil.Monday.Add(7 * time.Hour)
	hold(t, store, testutil.CourtA, "08:00", "09:00", now.Add(-time.Second))

	count, err := uc.Execute(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// Освобождённый слот снова принимает удержание
	hold(t, store, testutil.CourtA, "08:00", "09:00", now.Add(20*time.Minute))
}

func TestExecute_SecondSweepIsNoop(t *testing.T) {
	store := testutil.NewReservationStore()
	uc := NewUseCase(store, nil, nil, testutil.Logger{})

	now := testutil.Monday.Add(7 * time.Hour)
	hold(t, store, testutil.CourtA, "08:00", "09:00", now.Add(-time.Second))

	_, err := uc.Execute(context.Background(), now)
	require.NoError(t, err)

	count, err := uc.Execute(context.Background(), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestExecute_RepositoryError(t *testing.T) {
	uc := NewUseCase(failingRepo{}, nil, nil, testutil.Logger{})

	_, err := uc.Execute(context.Background(), time.Now())
	require.ErrorIs(t, err, ErrInternal)
}
