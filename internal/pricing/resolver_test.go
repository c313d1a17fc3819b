package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

const (
	facilityID int64 = 1
	sportID    int64 = 10
)

var (
	// 2025-03-07 is a Friday
	friday   = time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	everyDay = []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
	}
	eveningSlot = domain.Slot{Start: "21:00", End: "22:00"}
)

func rule(id int64, days []time.Weekday, start, end string, price, deposit int64) *domain.RateRule {
	return &domain.RateRule{
		ID:            id,
		FacilityID:    facilityID,
		SportID:       sportID,
		DaysOfWeek:    days,
		StartTime:     types.MustTimeString(start),
		EndTime:       types.MustTimeString(end),
		Price:         price,
		DepositAmount: deposit,
		CreatedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func promotion(id int64, scope domain.PromotionScope, typ domain.PromotionType, value int64) *domain.Promotion {
	p := &domain.Promotion{
		ID:         id,
		FacilityID: facilityID,
		Type:       typ,
		Value:      value,
		Scope:      scope,
		IsActive:   true,
	}
	switch scope {
	case domain.ScopeSport:
		p.SportID = ptr.Ptr(sportID)
	case domain.ScopeCourt:
		p.CourtID = ptr.Ptr(int64(100))
	}
	return p
}

func input(rules []*domain.RateRule, promos []*domain.Promotion) Input {
	return Input{
		FacilityID: facilityID,
		SportID:    sportID,
		Date:       friday,
		Slot:       eveningSlot,
		Rules:      rules,
		Promotions: promos,
	}
}

func TestResolve_NarrowestRuleWins(t *testing.T) {
	rules := []*domain.RateRule{
		rule(1, everyDay, "00:00", "24:00", 10000, 2000),
		rule(2, []time.Weekday{time.Friday, time.Saturday}, "20:00", "23:00", 15000, 3000),
	}

	quote, err := NewResolver().Resolve(input(rules, nil))
	require.NoError(t, err)

	assert.Equal(t, int64(15000), quote.Price)
	assert.Equal(t, int64(3000), quote.DepositAmount)
	assert.Equal(t, int64(2), quote.RateRuleID)
	assert.Nil(t, quote.Promotion)
}

func TestResolve_WideRuleOnOtherDays(t *testing.T) {
	rules := []*domain.RateRule{
		rule(1, everyDay, "00:00", "24:00", 10000, 2000),
		rule(2, []time.Weekday{time.Friday, time.Saturday}, "20:00", "23:00", 15000, 3000),
	}
	in := input(rules, nil)
	in.Date = friday.AddDate(0, 0, -4) // понедельник

	quote, err := NewResolver().Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), quote.Price)
}

func TestResolve_SlotMustFitInsideRule(t *testing.T) {
	rules := []*domain.RateRule{rule(1, everyDay, "20:00", "21:30", 15000, 0)}

	_, err := NewResolver().Resolve(input(rules, nil))
	assert.ErrorIs(t, err, domain.ErrNoApplicableRate)
}

func TestResolve_TieBrokenByNewest(t *testing.T) {
	older := rule(1, everyDay, "20:00", "23:00", 12000, 0)
	newer := rule(2, everyDay, "19:00", "22:00", 13000, 0)
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)

	for _, rules := range [][]*domain.RateRule{{older, newer}, {newer, older}} {
		quote, err := NewResolver().Resolve(input(rules, nil))
		require.NoError(t, err)
		assert.Equal(t, int64(2), quote.RateRuleID)
	}
}

func TestResolve_ValidityWindow(t *testing.T) {
	expired := rule(1, everyDay, "00:00", "24:00", 9000, 0)
	expired.ValidTo = ptr.Ptr(friday.AddDate(0, 0, -1))
	future := rule(2, everyDay, "00:00", "24:00", 9500, 0)
	future.ValidFrom = ptr.Ptr(friday.AddDate(0, 0, 1))

	_, err := NewResolver().Resolve(input([]*domain.RateRule{expired, future}, nil))
	assert.ErrorIs(t, err, domain.ErrNoApplicableRate)

	onTheDay := rule(3, everyDay, "00:00", "24:00", 9900, 0)
	onTheDay.ValidFrom = ptr.Ptr(friday)
	onTheDay.ValidTo = ptr.Ptr(friday)

	quote, err := NewResolver().Resolve(input([]*domain.RateRule{expired, future, onTheDay}, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(9900), quote.Price)
}

func TestResolve_NoRuleIsNeverZero(t *testing.T) {
	other := rule(1, everyDay, "00:00", "24:00", 10000, 0)
	other.SportID = sportID + 1

	quote, err := NewResolver().Resolve(input([]*domain.RateRule{other}, []*domain.Promotion{
		promotion(1, domain.ScopeFacility, domain.PromotionFixedPrice, 500),
	}))
	assert.Nil(t, quote)
	assert.ErrorIs(t, err, domain.ErrNoApplicableRate)
	assert.True(t, domain.IsPricingError(err))
}

func TestResolve_PromotionTypes(t *testing.T) {
	rules := []*domain.RateRule{rule(1, everyDay, "00:00", "24:00", 10000, 2500)}

	cases := []struct {
		name  string
		promo *domain.Promotion
		price int64
	}{
		{"percent", promotion(1, domain.ScopeFacility, domain.PromotionPercentDiscount, 25), 7500},
		{"percent over 100", promotion(1, domain.ScopeFacility, domain.PromotionPercentDiscount, 150), 0},
		{"fixed discount", promotion(1, domain.ScopeFacility, domain.PromotionFixedDiscount, 3000), 7000},
		{"fixed discount floors at zero", promotion(1, domain.ScopeFacility, domain.PromotionFixedDiscount, 30000), 0},
		{"fixed price", promotion(1, domain.ScopeFacility, domain.PromotionFixedPrice, 4000), 4000},
		{"gift item", promotion(1, domain.ScopeFacility, domain.PromotionGiftItem, 0), 10000},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			quote, err := NewResolver().Resolve(input(rules, []*domain.Promotion{c.promo}))
			require.NoError(t, err)

			assert.Equal(t, c.price, quote.Price)
			assert.Equal(t, int64(10000), quote.BasePrice)
			assert.Equal(t, int64(2500), quote.DepositAmount, "deposit comes from the rate rule")
			require.NotNil(t, quote.Promotion)
			assert.Equal(t, c.promo.Type, quote.Promotion.Type)
		})
	}
}

func TestResolve_GiftItemAttached(t *testing.T) {
	rules := []*domain.RateRule{rule(1, everyDay, "00:00", "24:00", 10000, 0)}
	gift := promotion(7, domain.ScopeSport, domain.PromotionGiftItem, 0)
	gift.GiftItem = ptr.Ptr("water bottle")

	quote, err := NewResolver().Resolve(input(rules, []*domain.Promotion{gift}))
	require.NoError(t, err)

	require.NotNil(t, quote.Promotion)
	assert.Equal(t, int64(7), quote.Promotion.ID)
	require.NotNil(t, quote.Promotion.GiftItem)
	assert.Equal(t, "water bottle", *quote.Promotion.GiftItem)
}

func TestResolve_PromotionScopePriority(t *testing.T) {
	rules := []*domain.RateRule{rule(1, everyDay, "00:00", "24:00", 10000, 0)}
	promos := []*domain.Promotion{
		promotion(1, domain.ScopeFacility, domain.PromotionFixedPrice, 9000),
		promotion(2, domain.ScopeSport, domain.PromotionFixedPrice, 8000),
		promotion(3, domain.ScopeCourt, domain.PromotionFixedPrice, 7000),
	}

	quote, err := NewResolver().Resolve(input(rules, promos))
	require.NoError(t, err)
	assert.Equal(t, int64(8000), quote.Price, "court promotion ignored without a court")

	in := input(rules, promos)
	in.CourtID = ptr.Ptr(int64(100))
	quote, err = NewResolver().Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), quote.Price)

	in.CourtID = ptr.Ptr(int64(101))
	quote, err = NewResolver().Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), quote.Price)
}

func TestResolve_AmbiguousPromotion(t *testing.T) {
	rules := []*domain.RateRule{rule(1, everyDay, "00:00", "24:00", 10000, 0)}
	promos := []*domain.Promotion{
		promotion(1, domain.ScopeSport, domain.PromotionPercentDiscount, 10),
		promotion(2, domain.ScopeSport, domain.PromotionFixedDiscount, 500),
	}

	_, err := NewResolver().Resolve(input(rules, promos))
	assert.ErrorIs(t, err, domain.ErrAmbiguousPromotion)

	// промо более узкой области снимает неоднозначность
	in := input(rules, append(promos, promotion(3, domain.ScopeCourt, domain.PromotionFixedPrice, 6000)))
	in.CourtID = ptr.Ptr(int64(100))
	quote, err := NewResolver().Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), quote.Price)
}

func TestResolve_PromotionPredicates(t *testing.T) {
	rules := []*domain.RateRule{rule(1, everyDay, "00:00", "24:00", 10000, 0)}

	inactive := promotion(1, domain.ScopeFacility, domain.PromotionFixedPrice, 1)
	inactive.IsActive = false

	wrongDay := promotion(2, domain.ScopeFacility, domain.PromotionFixedPrice, 2)
	wrongDay.DaysOfWeek = []time.Weekday{time.Monday}

	morning := promotion(3, domain.ScopeFacility, domain.PromotionFixedPrice, 3)
	morning.StartTime = ptr.Ptr(types.MustTimeString("08:00"))
	morning.EndTime = ptr.Ptr(types.MustTimeString("12:00"))

	ended := promotion(4, domain.ScopeFacility, domain.PromotionFixedPrice, 4)
	ended.ValidTo = ptr.Ptr(friday.AddDate(0, 0, -1))

	otherFacility := promotion(5, domain.ScopeFacility, domain.PromotionFixedPrice, 5)
	otherFacility.FacilityID = facilityID + 1

	quote, err := NewResolver().Resolve(input(rules, []*domain.Promotion{inactive, wrongDay, morning, ended, otherFacility}))
	require.NoError(t, err)
	assert.Equal(t, int64(10000), quote.Price)
	assert.Nil(t, quote.Promotion)
}
