package handlers

import (
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// QuoteResponse цена слота
// Суммы в минимальных единицах валюты
type QuoteResponse struct {
	Price         int64              `json:"price"`
	BasePrice     int64              `json:"basePrice"`
	DepositAmount int64              `json:"depositAmount"`
	Promotion     *PromotionResponse `json:"promotion,omitempty"`
}

// PromotionResponse применённая акция
type PromotionResponse struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	GiftItem *string `json:"giftItem,omitempty"`
}

// FreeCourtResponse свободный корт и его цена
type FreeCourtResponse struct {
	CourtID int64          `json:"courtId"`
	Quote   *QuoteResponse `json:"quote,omitempty"`
}

// SlotAvailabilityResponse доступность одного слота
type SlotAvailabilityResponse struct {
	StartTime    string              `json:"startTime"`
	EndTime      string              `json:"endTime"`
	FreeCourts   []FreeCourtResponse `json:"freeCourts"`
	TotalCourts  int                 `json:"totalCourts"`
	Quote        *QuoteResponse      `json:"quote,omitempty"`
	PricingError string              `json:"pricingError,omitempty"`
}

// FromDomainQuote конвертирует цену в DTO
func FromDomainQuote(q *domain.Quote) *QuoteResponse {
	if q == nil {
		return nil
	}

	resp := &QuoteResponse{
		Price:         q.Price,
		BasePrice:     q.BasePrice,
		DepositAmount: q.DepositAmount,
	}
	if q.Promotion != nil {
		resp.Promotion = &PromotionResponse{
			ID:       q.Promotion.ID,
			Type:     string(q.Promotion.Type),
			GiftItem: q.Promotion.GiftItem,
		}
	}
	return resp
}

// FromDomainFreeCourts конвертирует свободные корты, nil превращается в пустой список
func FromDomainFreeCourts(courts []domain.FreeCourt) []FreeCourtResponse {
	result := make([]FreeCourtResponse, 0, len(courts))
	for _, c := range courts {
		result = append(result, FreeCourtResponse{
			CourtID: c.CourtID,
			Quote:   FromDomainQuote(c.Quote),
		})
	}
	return result
}

// FromDomainSlotAvailability конвертирует доступность слота в DTO
func FromDomainSlotAvailability(sa *domain.SlotAvailability) *SlotAvailabilityResponse {
	if sa == nil {
		return nil
	}

	return &SlotAvailabilityResponse{
		StartTime:    sa.Slot.Start.String(),
		EndTime:      sa.Slot.End.String(),
		FreeCourts:   FromDomainFreeCourts(sa.FreeCourts),
		TotalCourts:  sa.TotalCourts,
		Quote:        FromDomainQuote(sa.Quote),
		PricingError: sa.PricingError,
	}
}
