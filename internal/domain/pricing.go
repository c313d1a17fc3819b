package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// RateRule prices a time range on a set of weekdays for a facility sport.
type RateRule struct {
	ID            int64
	FacilityID    int64
	SportID       int64
	DaysOfWeek    []time.Weekday
	StartTime     types.TimeString
	EndTime       types.TimeString
	Price         int64
	DepositAmount int64
	ValidFrom     *time.Time
	ValidTo       *time.Time
	CreatedAt     time.Time
}

// AppliesOn reports whether the rule covers the weekday and validity window of the date.
func (r *RateRule) AppliesOn(date time.Time) bool {
	return containsWeekday(r.DaysOfWeek, date.Weekday()) && withinValidity(date, r.ValidFrom, r.ValidTo)
}

// Contains reports whether the slot lies inside the rule's time range.
func (r *RateRule) Contains(slot Slot) bool {
	return !slot.Start.IsBefore(r.StartTime) && !slot.End.IsAfter(r.EndTime)
}

// RangeMinutes width of the time range; narrower rules are more specific.
func (r *RateRule) RangeMinutes() int {
	return r.EndTime.Minutes() - r.StartTime.Minutes()
}

// PromotionType selects how a promotion modifies the base price.
type PromotionType string

const (
	PromotionPercentDiscount PromotionType = "percent_discount"
	PromotionFixedDiscount   PromotionType = "fixed_discount"
	PromotionFixedPrice      PromotionType = "fixed_price"
	PromotionGiftItem        PromotionType = "gift_item"
)

func (t PromotionType) IsValid() bool {
	switch t {
	case PromotionPercentDiscount, PromotionFixedDiscount, PromotionFixedPrice, PromotionGiftItem:
		return true
	}
	return false
}

// PromotionScope is the specificity of a promotion.
type PromotionScope string

const (
	ScopeFacility PromotionScope = "facility"
	ScopeSport    PromotionScope = "sport"
	ScopeCourt    PromotionScope = "court"
)

// Rank orders scopes: court > sport > facility.
func (s PromotionScope) Rank() int {
	switch s {
	case ScopeCourt:
		return 3
	case ScopeSport:
		return 2
	case ScopeFacility:
		return 1
	}
	return 0
}

// Promotion modifies the price resolved from a RateRule.
// Value is a percentage for PercentDiscount and an amount in minor units otherwise.
type Promotion struct {
	ID         int64
	FacilityID int64
	Name       string
	Type       PromotionType
	Value      int64
	GiftItem   *string
	DaysOfWeek []time.Weekday // empty = every day
	StartTime  *types.TimeString
	EndTime    *types.TimeString
	ValidFrom  *time.Time
	ValidTo    *time.Time
	Scope      PromotionScope
	SportID    *int64
	CourtID    *int64
	IsActive   bool
	CreatedAt  time.Time
}

// Matches reports whether the promotion applies to the slot.
// courtID nil means the quote is not tied to a court, so court-scoped promotions do not match.
func (p *Promotion) Matches(sportID int64, courtID *int64, date time.Time, slot Slot) bool {
	if !p.IsActive {
		return false
	}
	if len(p.DaysOfWeek) > 0 && !containsWeekday(p.DaysOfWeek, date.Weekday()) {
		return false
	}
	if !withinValidity(date, p.ValidFrom, p.ValidTo) {
		return false
	}
	if p.StartTime != nil && slot.Start.IsBefore(*p.StartTime) {
		return false
	}
	if p.EndTime != nil && slot.End.IsAfter(*p.EndTime) {
		return false
	}

	switch p.Scope {
	case ScopeFacility:
		return true
	case ScopeSport:
		return p.SportID != nil && *p.SportID == sportID
	case ScopeCourt:
		return p.CourtID != nil && courtID != nil && *p.CourtID == *courtID
	}
	return false
}

// Quote is the resolved price of a slot.
type Quote struct {
	Price         int64
	BasePrice     int64
	DepositAmount int64
	RateRuleID    int64
	Promotion     *AppliedPromotion
}

// AppliedPromotion records the promotion used by a quote.
// GiftItem is a fulfillment obligation for the point-of-sale collaborator.
type AppliedPromotion struct {
	ID       int64
	Type     PromotionType
	GiftItem *string
}

func containsWeekday(days []time.Weekday, day time.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func withinValidity(date time.Time, from, to *time.Time) bool {
	d := DateOnly(date)
	if from != nil && d.Before(DateOnly(*from)) {
		return false
	}
	if to != nil && d.After(DateOnly(*to)) {
		return false
	}
	return true
}
