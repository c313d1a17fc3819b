package attempt_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/testutil"
	attemptBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/attempt_booking"
)

type useCaseStub struct {
	got  *attemptBooking.Request
	resp *attemptBooking.Response
	err  error
}

func (s *useCaseStub) Execute(_ context.Context, req *attemptBooking.Request) (*attemptBooking.Response, error) {
	s.got = req
	return s.resp, s.err
}

const draftBody = `{"draft":{"id":"d1","date":"2030-03-04","facilityId":1,"sportId":10,"slot":"10:00-11:00","courtId":101}}`

func serve(h *Handler, userID string, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	if userID != "" {
		r.Header.Set(middleware.HeaderUserID, userID)
	}
	w := httptest.NewRecorder()
	middleware.Auth(http.HandlerFunc(h.Handle)).ServeHTTP(w, r)
	return w
}

func TestHandler_Created(t *testing.T) {
	expires := time.Date(2030, 3, 4, 9, 20, 0, 0, time.UTC)
	stub := &useCaseStub{resp: &attemptBooking.Response{
		ID:         7,
		FacilityID: 1,
		SportID:    10,
		CourtID:    101,
		CustomerID: 42,
		Date:       testutil.Monday,
		StartTime:  "10:00",
		EndTime:    "11:00",
		Status:     string(domain.StatusPending),
		Price:      10000,
		ExpiresAt:  expires,
	}}
	h := NewHandler(stub, testutil.Logger{})

	w := serve(h, "42", draftBody)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, stub.got)
	assert.Equal(t, int64(42), stub.got.CustomerID)
	assert.Equal(t, "10:00-11:00", stub.got.Draft.Slot)
	assert.Equal(t, int64(101), *stub.got.Draft.CourtID)

	var resp HoldResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "2030-03-04", resp.BookingDate)
	assert.Equal(t, "pending", resp.Status)
	assert.True(t, expires.Equal(resp.ExpiresAt))
}

func TestHandler_SlotTakenReturnsAvailability(t *testing.T) {
	stub := &useCaseStub{err: &attemptBooking.SlotTakenError{
		CourtID: testutil.CourtA,
		Date:    "2030-03-04",
		Slot:    testutil.Slot("10:00", "11:00"),
		Availability: &domain.SlotAvailability{
			Slot:        testutil.Slot("10:00", "11:00"),
			FreeCourts:  []domain.FreeCourt{{CourtID: testutil.CourtB}},
			TotalCourts: 2,
		},
	}}
	h := NewHandler(stub, testutil.Logger{})

	w := serve(h, "42", draftBody)

	require.Equal(t, http.StatusConflict, w.Code)
	var resp SlotTakenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testutil.CourtA, resp.CourtID)
	require.NotNil(t, resp.Availability)
	require.Len(t, resp.Availability.FreeCourts, 1)
	assert.Equal(t, testutil.CourtB, resp.Availability.FreeCourts[0].CourtID)
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid draft", fmt.Errorf("%w: %v", attemptBooking.ErrInvalidInput, domain.ErrDraftIncomplete), http.StatusBadRequest},
		{"facility not found", attemptBooking.ErrFacilityNotFound, http.StatusNotFound},
		{"court not found", attemptBooking.ErrCourtNotFound, http.StatusNotFound},
		{"date in past", fmt.Errorf("%w: %w", attemptBooking.ErrInvalidDate, domain.ErrDateInPast), http.StatusBadRequest},
		{"too late", attemptBooking.ErrTooLateToBook, http.StatusBadRequest},
		{"off grid", attemptBooking.ErrInvalidTimeSlot, http.StatusBadRequest},
		{"no rate", fmt.Errorf("pricing: %w", domain.ErrNoApplicableRate), http.StatusUnprocessableEntity},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&useCaseStub{err: tt.err}, testutil.Logger{})

			w := serve(h, "42", draftBody)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestHandler_RequestRejectedBeforeUseCase(t *testing.T) {
	stub := &useCaseStub{}
	h := NewHandler(stub, testutil.Logger{})

	assert.Equal(t, http.StatusUnauthorized, serve(h, "", draftBody).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "42", `{"draft":`).Code)
	assert.Nil(t, stub.got)
}
