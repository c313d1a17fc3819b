package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/pricing"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability/models"
	"github.com/m04kA/SMC-CourtBooking/internal/testutil"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

type fixture struct {
	catalog *testutil.Catalog
	store   *testutil.ReservationStore
	clock   *testutil.Clock
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog: testutil.NewFacilityCatalog(),
		store:   testutil.NewReservationStore(),
		clock:   testutil.NewClock(testutil.Monday.Add(-12 * time.Hour)),
	}
	f.svc = NewService(f.catalog, f.catalog, f.catalog, f.store, f.catalog,
		pricing.NewResolver(), f.clock, domain.DefaultHoldWindowMinutes, testutil.Logger{})
	return f
}

func freeCourts(sa domain.SlotAvailability) []int64 {
	return sa.FreeCourtIDs()
}

func TestGetDailyAvailability_MondayRecurringExample(t *testing.T) {
	f := newFixture(t)
	f.catalog.Recurring = []*domain.RecurringReservation{{
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
	}}

	got, err := f.svc.GetDailyAvailability(context.Background(), testutil.FacilityID, testutil.SportID, testutil.Monday)
	require.NoError(t, err)

	require.Len(t, got.Slots, 4)
	keys := make([]string, 0, len(got.Slots))
	for _, sa := range got.Slots {
		keys = append(keys, sa.Slot.Key())
		require.NotNil(t, sa.Quote, "slot %s must be priced", sa.Slot)
		assert.Equal(t, int64(10000), sa.Quote.Price)
		assert.Empty(t, sa.PricingError)
		assert.Equal(t, 2, sa.TotalCourts)
	}
	assert.Equal(t, []string{"08:00-09:00", "09:00-10:00", "10:00-11:00", "11:00-12:00"}, keys)

	assert.Equal(t, []int64{testutil.CourtA, testutil.CourtB}, freeCourts(got.Slots[0]))
	assert.Equal(t, []int64{testutil.CourtB}, freeCourts(got.Slots[1]))
	assert.Equal(t, []int64{testutil.CourtA, testutil.CourtB}, freeCourts(got.Slots[2]))
	assert.Equal(t, []int64{testutil.CourtA, testutil.CourtB}, freeCourts(got.Slots[3]))

	for _, fc := range got.Slots[0].FreeCourts {
		require.NotNil(t, fc.Quote)
		assert.Equal(t, int64(10000), fc.Quote.Price)
	}
}

func TestGetDailyAvailability_ClosedDayIsEmpty(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.GetDailyAvailability(context.Background(), testutil.FacilityID, testutil.SportID, testutil.Monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.NotNil(t, got.Slots)
	assert.Empty(t, got.Slots)
}

func TestGetDailyAvailability_HidesSlotsInsideNotice(t *testing.T) {
	f := newFixture(t)
	f.catalog.Configs = []*domain.SlotConfig{{
		ID:                      1,
		FacilityID:              testutil.FacilityID,
		SlotDurationMinutes:     60,
		HoldWindowMinutes:       15,
		MinBookingNoticeMinutes: 15,
	}}
	f.clock.Set(testutil.Monday.Add(9*time.Hour + 45*time.Minute))

	got, err := f.svc.GetDailyAvailability(context.Background(), testutil.FacilityID, testutil.SportID, testutil.Monday)
	require.NoError(t, err)

	// 09:00 уже началось, 10:00 ровно на границе уведомления
	require.Len(t, got.Slots, 2)
	assert.Equal(t, "10:00-11:00", got.Slots[0].Slot.Key())
	assert.Equal(t, "11:00-12:00", got.Slots[1].Slot.Key())
}

func TestGetDailyAvailability_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("facility not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.GetDailyAvailability(ctx, 999, testutil.SportID, testutil.Monday)
		assert.ErrorIs(t, err, ErrFacilityNotFound)
	})

	t.Run("sport not offered", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.GetDailyAvailability(ctx, testutil.FacilityID, 55, testutil.Monday)
		assert.ErrorIs(t, err, ErrSportNotOffered)
	})

	t.Run("date in the past", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.GetDailyAvailability(ctx, testutil.FacilityID, testutil.SportID, testutil.Monday.AddDate(0, 0, -7))
		assert.ErrorIs(t, err, ErrInvalidDate)
		assert.ErrorIs(t, err, domain.ErrDateInPast)
	})

	t.Run("missing template is a configuration error", func(t *testing.T) {
		f := newFixture(t)
		delete(f.catalog.Templates, testutil.FacilityID)
		_, err := f.svc.GetDailyAvailability(ctx, testutil.FacilityID, testutil.SportID, testutil.Monday)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}

func TestGetDailyAvailability_PricingErrorIsSurfaced(t *testing.T) {
	f := newFixture(t)
	f.catalog.RateRules[0].StartTime = types.MustTimeString("10:00")

	got, err := f.svc.GetDailyAvailability(context.Background(), testutil.FacilityID, testutil.SportID, testutil.Monday)
	require.NoError(t, err)
	require.Len(t, got.Slots, 4)

	assert.Nil(t, got.Slots[0].Quote)
	assert.Contains(t, got.Slots[0].PricingError, domain.ErrNoApplicableRate.Error())
	for _, fc := range got.Slots[0].FreeCourts {
		assert.Nil(t, fc.Quote)
	}

	require.NotNil(t, got.Slots[2].Quote)
	assert.Equal(t, int64(10000), got.Slots[2].Quote.Price)
}

func TestGetDailyAvailability_CourtScopedPromotion(t *testing.T) {
	f := newFixture(t)
	f.catalog.Promotions = []*domain.Promotion{{
		ID:         3,
		FacilityID: testutil.FacilityID,
		Name:       "court B happy hour",
		Type:       domain.PromotionFixedPrice,
		Value:      7000,
		Scope:      domain.ScopeCourt,
		CourtID:    ptr.Ptr(testutil.CourtB),
		IsActive:   true,
	}}

	got, err := f.svc.GetDailyAvailability(context.Background(), testutil.FacilityID, testutil.SportID, testutil.Monday)
	require.NoError(t, err)

	slot := got.Slots[0]
	require.NotNil(t, slot.Quote)
	assert.Equal(t, int64(10000), slot.Quote.Price, "slot price ignores court promotions")
	require.Len(t, slot.FreeCourts, 2)
	assert.Equal(t, int64(10000), slot.FreeCourts[0].Quote.Price)
	assert.Equal(t, int64(7000), slot.FreeCourts[1].Quote.Price)
}

func TestGetSlotAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	expires := testutil.Monday.Add(time.Hour)
	_, err := f.store.Create(ctx, &domain.Reservation{
		FacilityID: testutil.FacilityID,
		SportID:    testutil.SportID,
		CourtID:    testutil.CourtB,
		CustomerID: 42,
		Date:       testutil.Monday,
		StartTime:  types.MustTimeString("10:00"),
		EndTime:    types.MustTimeString("11:00"),
		Status:     domain.StatusPending,
		ExpiresAt:  &expires,
	})
	require.NoError(t, err)

	got, err := f.svc.GetSlotAvailability(ctx, testutil.FacilityID, testutil.SportID, testutil.Monday, testutil.Slot("10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, []int64{testutil.CourtA}, got.FreeCourtIDs())
	assert.Equal(t, float64(50), got.OccupancyRate())

	_, err = f.svc.GetSlotAvailability(ctx, testutil.FacilityID, testutil.SportID, testutil.Monday, testutil.Slot("10:30", "11:30"))
	assert.ErrorIs(t, err, ErrSlotNotInGrid)
}

func TestGetMergedAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const otherFacility int64 = 2
	f.catalog.Facilities[otherFacility] = &domain.Facility{
		ID:     otherFacility,
		Name:   "Riverside",
		Courts: []domain.Court{{ID: 201, SportIDs: []int64{testutil.SportID}, IsActive: true}},
	}
	f.catalog.Templates[otherFacility] = &domain.WeeklyTemplate{
		FacilityID: otherFacility,
		Days: map[time.Weekday]domain.DaySchedule{
			time.Monday: {IsOpen: true, OpenTime: types.MustTimeString("10:00"), CloseTime: types.MustTimeString("14:00")},
		},
	}
	f.catalog.RateRules = append(f.catalog.RateRules, &domain.RateRule{
		ID: 2, FacilityID: otherFacility, SportID: testutil.SportID, DaysOfWeek: testutil.AllWeekdays(),
		StartTime: types.MustTimeString("00:00"), EndTime: types.MustTimeString("24:00"), Price: 8000,
	})
	f.catalog.AddBlackout(&domain.BlackoutRule{ID: 1, FacilityID: otherFacility, Date: testutil.Monday, CourtID: ptr.Ptr(int64(201))})

	got, err := f.svc.GetMergedAvailability(ctx, testutil.Monday, []models.Candidate{
		{FacilityID: testutil.FacilityID, SportID: testutil.SportID},
		{FacilityID: otherFacility, SportID: testutil.SportID},
	})
	require.NoError(t, err)

	keys := make([]string, 0, len(got.Slots))
	for _, s := range got.Slots {
		keys = append(keys, s.Slot.Key())
	}
	assert.Equal(t, []string{"08:00-09:00", "09:00-10:00", "10:00-11:00", "11:00-12:00", "12:00-13:00", "13:00-14:00"}, keys)

	// вторая площадка закрыта блокировкой, слоты остаются в выдаче без источников
	assert.Empty(t, got.Slots[4].Sources)
	require.Len(t, got.Slots[2].Sources, 1)
	src := got.Slots[2].Sources[0]
	assert.Equal(t, testutil.FacilityID, src.FacilityID)
	require.NotNil(t, src.Quote)
	assert.Equal(t, int64(10000), src.Quote.Price)
	require.Len(t, src.FreeCourts, 2)
	assert.NotNil(t, src.FreeCourts[0].Quote)
}

func TestGetMergedAvailability_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetMergedAvailability(ctx, testutil.Monday, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	tooMany := make([]models.Candidate, domain.MaxMergedSources+1)
	for i := range tooMany {
		tooMany[i] = models.Candidate{FacilityID: testutil.FacilityID, SportID: testutil.SportID}
	}
	_, err = f.svc.GetMergedAvailability(ctx, testutil.Monday, tooMany)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetMergedAvailability_GranularityMismatch(t *testing.T) {
	f := newFixture(t)
	const otherFacility int64 = 3
	f.catalog.Facilities[otherFacility] = &domain.Facility{
		ID:     otherFacility,
		Courts: []domain.Court{{ID: 301, SportIDs: []int64{testutil.SportID}, IsActive: true}},
	}
	f.catalog.Templates[otherFacility] = f.catalog.Templates[testutil.FacilityID]
	f.catalog.Configs = []*domain.SlotConfig{{ID: 9, FacilityID: otherFacility, SlotDurationMinutes: 30, HoldWindowMinutes: 20}}

	_, err := f.svc.GetMergedAvailability(context.Background(), testutil.Monday, []models.Candidate{
		{FacilityID: testutil.FacilityID, SportID: testutil.SportID},
		{FacilityID: otherFacility, SportID: testutil.SportID},
	})
	assert.ErrorIs(t, err, domain.ErrGranularityMismatch)
}
