package pricing

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Input всё, что нужно для расчёта цены одного слота
// CourtID == nil для цены слота без привязки к корту: промо уровня корта тогда не применяются
type Input struct {
	FacilityID int64
	SportID    int64
	CourtID    *int64
	Date       time.Time
	Slot       domain.Slot
	Rules      []*domain.RateRule
	Promotions []*domain.Promotion
}

// Resolver чистый расчёт цены слота, без обращения к хранилищу
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve выбирает тариф и промо и считает итоговую цену
func (r *Resolver) Resolve(in Input) (*domain.Quote, error) {
	rule, err := r.selectRule(in)
	if err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		Price:         rule.Price,
		BasePrice:     rule.Price,
		DepositAmount: rule.DepositAmount,
		RateRuleID:    rule.ID,
	}

	promo, err := r.selectPromotion(in)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return quote, nil
	}

	quote.Price = applyPromotion(rule.Price, promo)
	quote.Promotion = &domain.AppliedPromotion{
		ID:   promo.ID,
		Type: promo.Type,
	}
	if promo.Type == domain.PromotionGiftItem {
		quote.Promotion.GiftItem = promo.GiftItem
	}

	return quote, nil
}

// selectRule самый узкий подходящий тариф, при равенстве самый новый
func (r *Resolver) selectRule(in Input) (*domain.RateRule, error) {
	matched := make([]*domain.RateRule, 0, len(in.Rules))
	for _, rule := range in.Rules {
		if rule.FacilityID != in.FacilityID || rule.SportID != in.SportID {
			continue
		}
		if !rule.AppliesOn(in.Date) || !rule.Contains(in.Slot) {
			continue
		}
		matched = append(matched, rule)
	}

	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: facility %d sport %d on %s %s",
			domain.ErrNoApplicableRate, in.FacilityID, in.SportID, in.Date.Format(domain.DateFormat), in.Slot)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.RangeMinutes() != b.RangeMinutes() {
			return a.RangeMinutes() < b.RangeMinutes()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		// одинаковое время создания: детерминированно по id
		return a.ID > b.ID
	})

	return matched[0], nil
}

// selectPromotion одна промо с наибольшим рангом области действия
// Две подходящие промо одного ранга не складываются: ErrAmbiguousPromotion
func (r *Resolver) selectPromotion(in Input) (*domain.Promotion, error) {
	var (
		best     *domain.Promotion
		bestRank int
		tied     []int64
	)

	for _, p := range in.Promotions {
		if p.FacilityID != in.FacilityID || !p.Type.IsValid() {
			continue
		}
		if !p.Matches(in.SportID, in.CourtID, in.Date, in.Slot) {
			continue
		}

		rank := p.Scope.Rank()
		switch {
		case rank > bestRank:
			best, bestRank = p, rank
			tied = tied[:0]
		case rank == bestRank:
			tied = append(tied, p.ID)
		}
	}

	if len(tied) > 0 {
		return nil, fmt.Errorf("%w: promotions %d and %v share scope %s on %s %s",
			domain.ErrAmbiguousPromotion, best.ID, tied, best.Scope, in.Date.Format(domain.DateFormat), in.Slot)
	}

	return best, nil
}

func applyPromotion(base int64, p *domain.Promotion) int64 {
	var price int64

	switch p.Type {
	case domain.PromotionPercentDiscount:
		percent := p.Value
		if percent > 100 {
			percent = 100
		}
		if percent < 0 {
			percent = 0
		}
		price = base - base*percent/100
	case domain.PromotionFixedDiscount:
		price = base - p.Value
	case domain.PromotionFixedPrice:
		price = p.Value
	default:
		price = base
	}

	if price < 0 {
		return 0
	}
	return price
}
