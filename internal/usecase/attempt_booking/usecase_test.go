package attempt_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CourtBooking/internal/pricing"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability"
	"github.com/m04kA/SMC-CourtBooking/internal/testutil"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

const customerID int64 = 42

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (r *outcomeRecorder) RecordBookingAttempt(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[string]int)
	}
	r.outcomes[outcome]++
}

func (r *outcomeRecorder) count(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcomes[outcome]
}

type fixture struct {
	catalog *testutil.Catalog
	store   *testutil.ReservationStore
	clock   *testutil.Clock
	tx      *testutil.TxManager
	events  *testutil.EventRecorder
	metrics *outcomeRecorder
	uc      *UseCase
}

func newFixture(t *testing.T, retries int) *fixture {
	t.Helper()
	f := &fixture{
		catalog: testutil.NewFacilityCatalog(),
		store:   testutil.NewReservationStore(),
		clock:   testutil.NewClock(testutil.Monday.Add(-12 * time.Hour)),
		tx:      &testutil.TxManager{},
		events:  &testutil.EventRecorder{},
		metrics: &outcomeRecorder{},
	}
	resolver := pricing.NewResolver()
	availabilitySvc := availability.NewService(f.catalog, f.catalog, f.catalog, f.store, f.catalog,
		resolver, f.clock, domain.DefaultHoldWindowMinutes, testutil.Logger{})

	f.uc = NewUseCase(f.store, f.catalog, f.catalog, f.catalog, f.catalog, resolver, availabilitySvc,
		f.events, f.metrics, f.tx, f.clock,
		Settings{DefaultHoldWindowMinutes: domain.DefaultHoldWindowMinutes, SerializationRetries: retries},
		testutil.Logger{})
	return f
}

func draft(courtID int64, start, end string) domain.BookingDraft {
	return domain.NewBookingDraft().
		WithDate(testutil.Monday).
		WithFacility(testutil.FacilityID, testutil.SportID).
		WithSlot(testutil.Slot(start, end)).
		WithCourt(courtID)
}

func request(courtID int64, start, end string) *Request {
	return &Request{CustomerID: customerID, Draft: draft(courtID, start, end)}
}

func TestExecute_CreatesPendingHold(t *testing.T) {
	f := newFixture(t, 1)

	resp, err := f.uc.Execute(context.Background(), request(testutil.CourtA, "10:00", "11:00"))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, testutil.CourtA, resp.CourtID)
	assert.Equal(t, customerID, resp.CustomerID)
	assert.Equal(t, "10:00", resp.StartTime.String())
	assert.Equal(t, "11:00", resp.EndTime.String())
	assert.Equal(t, int64(10000), resp.Price)
	assert.Equal(t, int64(2000), resp.DepositAmount)
	assert.Equal(t, f.clock.Now().Add(domain.DefaultHoldWindowMinutes*time.Minute), resp.ExpiresAt)

	assert.Equal(t, []string{"held"}, f.events.Kinds())
	assert.Equal(t, 1, f.metrics.count(outcomeSuccess))
	assert.Equal(t, 1, f.store.CountByStatus(domain.StatusPending))
}

func TestExecute_HoldWindowFromFacilityConfig(t *testing.T) {
	f := newFixture(t, 1)
	f.catalog.Configs = append(f.catalog.Configs, &domain.SlotConfig{
		ID:                  1,
		FacilityID:          testutil.FacilityID,
		SportID:             ptr.Ptr(testutil.SportID),
		SlotDurationMinutes: 60,
		HoldWindowMinutes:   45,
	})

	resp, err := f.uc.Execute(context.Background(), request(testutil.CourtA, "10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(45*time.Minute), resp.ExpiresAt)
}

func TestExecute_ConcurrentAttemptsOnlyOneWins(t *testing.T) {
	f := newFixture(t, 1)

	const attempts = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		taken     []error
		others    []error
	)

	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(customer int64) {
			defer wg.Done()
			<-start
			_, err := f.uc.Execute(context.Background(), &Request{
				CustomerID: customer,
				Draft:      draft(testutil.CourtA, "09:00", "10:00"),
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrSlotAlreadyTaken):
				taken = append(taken, err)
			default:
				others = append(others, err)
			}
		}(int64(1000 + i))
	}
	close(start)
	wg.Wait()

	require.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Len(t, taken, attempts-1)
	assert.Equal(t, 1, f.store.CountByStatus(domain.StatusPending))
	assert.Equal(t, 1, f.metrics.count(outcomeSuccess))
	assert.Equal(t, attempts-1, f.metrics.count(outcomeSlotTaken))

	var slotTaken *SlotTakenError
	require.True(t, errors.As(taken[0], &slotTaken))
	assert.Equal(t, testutil.CourtA, slotTaken.CourtID)
	require.NotNil(t, slotTaken.Availability)
	assert.Equal(t, []int64{testutil.CourtB}, slotTaken.Availability.FreeCourtIDs())
}

func TestExecute_RetriesSerializationFailureOnce(t *testing.T) {
	f := newFixture(t, 1)
	f.tx.FailNext(bookingRepo.ErrSerialization)

	resp, err := f.uc.Execute(context.Background(), request(testutil.CourtA, "10:00", "11:00"))
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, 2, f.tx.Calls())
}

func TestExecute_GivesUpAfterRetries(t *testing.T) {
	f := newFixture(t, 1)
	f.tx.FailNext(bookingRepo.ErrSerialization, bookingRepo.ErrSerialization)

	_, err := f.uc.Execute(context.Background(), request(testutil.CourtA, "10:00", "11:00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, bookingRepo.ErrSerialization)
	assert.Equal(t, 2, f.tx.Calls())
	assert.Equal(t, 1, f.metrics.count(outcomeError))
}

func TestExecute_RetriesCappedAtOne(t *testing.T) {
	f := newFixture(t, 5)
	f.tx.FailNext(bookingRepo.ErrSerialization, bookingRepo.ErrSerialization, bookingRepo.ErrSerialization)

	_, err := f.uc.Execute(context.Background(), request(testutil.CourtA, "10:00", "11:00"))
	assert.ErrorIs(t, err, bookingRepo.ErrSerialization)
	assert.Equal(t, 2, f.tx.Calls())
}

func TestExecute_SlotTakenIsNotRetried(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.uc.Execute(context.Background(), request(testutil.CourtA, "10:00", "11:00"))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), request(testutil.CourtA, "10:00", "11:00"))
	require.ErrorIs(t, err, domain.ErrSlotAlreadyTaken)
	assert.Equal(t, 2, f.tx.Calls())
}

func TestExecute_BlackoutBlocksCourt(t *testing.T) {
	f := newFixture(t, 1)
	f.catalog.AddBlackout(&domain.BlackoutRule{
		ID:         3,
		FacilityID: testutil.FacilityID,
		Date:       testutil.Monday,
		CourtID:    ptr.Ptr(testutil.CourtA),
		Reason:     "resurfacing",
	})

	_, err := f.uc.Execute(context.Background(), request(testutil.CourtA, "10:00", "11:00"))
	require.ErrorIs(t, err, domain.ErrSlotAlreadyTaken)

	_, err = f.uc.Execute(context.Background(), request(testutil.CourtB, "10:00", "11:00"))
	require.NoError(t, err)
}

func TestExecute_RecurringOccurrenceIsMaterialized(t *testing.T) {
	f := newFixture(t, 1)
	rr := &domain.RecurringReservation{
		ID:         5,
		FacilityID: testutil.FacilityID,
		SportID:    testutil.SportID,
		CourtID:    testutil.CourtA,
		Weekday:    time.Monday,
		StartTime:  types.MustTimeString("09:00"),
		EndTime:    types.MustTimeString("10:00"),
		RateID:     1,
		OwnerID:    77,
		IsActive:   true,
	}
	f.catalog.Recurring = append(f.catalog.Recurring, rr)
	f.store.AddRecurring(rr, 10000, 2000)

	// Бронь соседнего слота материализует вхождение на эту дату
	_, err := f.uc.Execute(context.Background(), request(testutil.CourtA, "10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.CountByStatus(domain.StatusConfirmed))

	_, err = f.uc.Execute(context.Background(), request(testutil.CourtA, "09:00", "10:00"))
	require.ErrorIs(t, err, domain.ErrSlotAlreadyTaken)
	assert.Equal(t, 1, f.store.CountByStatus(domain.StatusConfirmed))
}

func TestExecute_GiftPromotionIsRecorded(t *testing.T) {
	f := newFixture(t, 1)
	f.catalog.Promotions = []*domain.Promotion{{
		ID:         8,
		FacilityID: testutil.FacilityID,
		Name:       "Free balls",
		Type:       domain.PromotionGiftItem,
		GiftItem:   ptr.Ptr("tube of balls"),
		Scope:      domain.ScopeCourt,
		CourtID:    ptr.Ptr(testutil.CourtB),
		IsActive:   true,
	}}

	resp, err := f.uc.Execute(context.Background(), request(testutil.CourtB, "10:00", "11:00"))
	require.NoError(t, err)
	require.NotNil(t, resp.AppliedPromotionID)
	assert.Equal(t, int64(8), *resp.AppliedPromotionID)
	require.NotNil(t, resp.GiftItem)
	assert.Equal(t, "tube of balls", *resp.GiftItem)

	resp, err = f.uc.Execute(context.Background(), request(testutil.CourtA, "10:00", "11:00"))
	require.NoError(t, err)
	assert.Nil(t, resp.AppliedPromotionID)
}

func TestExecute_PricingErrorBlocksBooking(t *testing.T) {
	f := newFixture(t, 1)
	f.catalog.RateRules = nil

	_, err := f.uc.Execute(context.Background(), request(testutil.CourtA, "10:00", "11:00"))
	require.ErrorIs(t, err, domain.ErrNoApplicableRate)
	assert.Equal(t, 0, f.tx.Calls())
	assert.Equal(t, 1, f.metrics.count(outcomePricingError))
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		req     *Request
		wantErr error
	}{
		{
			name:    "incomplete draft",
			req:     &Request{CustomerID: customerID, Draft: domain.NewBookingDraft().WithDate(testutil.Monday)},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing customer",
			req:     &Request{Draft: draft(testutil.CourtA, "10:00", "11:00")},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown court",
			req:     request(999, "10:00", "11:00"),
			wantErr: ErrCourtNotFound,
		},
		{
			name:    "slot off the grid",
			req:     request(testutil.CourtA, "08:30", "09:30"),
			wantErr: ErrInvalidTimeSlot,
		},
		{
			name:    "slot already started",
			now:     testutil.Monday.Add(9*time.Hour + 30*time.Minute),
			req:     request(testutil.CourtA, "09:00", "10:00"),
			wantErr: ErrTooLateToBook,
		},
		{
			name:    "date in the past",
			now:     testutil.Monday.AddDate(0, 0, 1),
			req:     request(testutil.CourtA, "10:00", "11:00"),
			wantErr: domain.ErrDateInPast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1)
			if !tt.now.IsZero() {
				f.clock.Set(tt.now)
			}

			_, err := f.uc.Execute(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, f.tx.Calls())
			assert.Equal(t, 1, f.metrics.count(outcomeRejected))
		})
	}
}
