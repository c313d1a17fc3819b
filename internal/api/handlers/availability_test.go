package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

func TestFromDomainSlotAvailability(t *testing.T) {
	gift := "water"
	sa := &domain.SlotAvailability{
		Slot: domain.Slot{Start: types.TimeString("10:00"), End: types.TimeString("11:00")},
		FreeCourts: []domain.FreeCourt{
			{CourtID: 2, Quote: &domain.Quote{Price: 9000, BasePrice: 10000}},
		},
		TotalCourts: 3,
		Quote: &domain.Quote{
			Price:     9000,
			BasePrice: 10000,
			Promotion: &domain.AppliedPromotion{ID: 7, Type: domain.PromotionGiftItem, GiftItem: &gift},
		},
	}

	resp := FromDomainSlotAvailability(sa)

	require.NotNil(t, resp)
	assert.Equal(t, "10:00", resp.StartTime)
	assert.Equal(t, "11:00", resp.EndTime)
	assert.Equal(t, 3, resp.TotalCourts)
	require.Len(t, resp.FreeCourts, 1)
	assert.Equal(t, int64(2), resp.FreeCourts[0].CourtID)
	require.NotNil(t, resp.Quote.Promotion)
	assert.Equal(t, "gift_item", resp.Quote.Promotion.Type)
	assert.Equal(t, &gift, resp.Quote.Promotion.GiftItem)
}

func TestFromDomainSlotAvailability_FullSlotHasEmptyCourtList(t *testing.T) {
	resp := FromDomainSlotAvailability(&domain.SlotAvailability{
		Slot:         domain.Slot{Start: types.TimeString("10:00"), End: types.TimeString("11:00")},
		TotalCourts:  2,
		PricingError: "no applicable rate",
	})

	assert.NotNil(t, resp.FreeCourts)
	assert.Empty(t, resp.FreeCourts)
	assert.Nil(t, resp.Quote)
	assert.Equal(t, "no applicable rate", resp.PricingError)
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()

	RespondConflict(w, "слот занят")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"слот занят"}`, w.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"error":"x"}`))

	var v ErrorResponse
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "x", v.Error)

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, DecodeJSON(bad, &v))
}
