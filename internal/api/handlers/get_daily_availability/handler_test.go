package get_daily_availability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/pricing"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability"
	"github.com/m04kA/SMC-CourtBooking/internal/testutil"
)

const route = "/api/v1/facilities/{facilityId}/sports/{sportId}/availability"

func newRouter(t *testing.T) (*mux.Router, *testutil.ReservationStore) {
	t.Helper()
	catalog := testutil.NewFacilityCatalog()
	store := testutil.NewReservationStore()
	clock := testutil.NewClock(testutil.Monday.Add(-12 * time.Hour))
	svc := availability.NewService(catalog, catalog, catalog, store, catalog,
		pricing.NewResolver(), clock, domain.DefaultHoldWindowMinutes, testutil.Logger{})

	r := mux.NewRouter()
	r.HandleFunc(route, NewHandler(svc, testutil.Logger{}).Handle).Methods(http.MethodGet)
	return r, store
}

func get(r http.Handler, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestHandler_ReturnsSlotGrid(t *testing.T) {
	r, _ := newRouter(t)

	w := get(r, "/api/v1/facilities/1/sports/10/availability?date=2030-03-04")

	require.Equal(t, http.StatusOK, w.Code)
	var resp DailyAvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2030-03-04", resp.Date)
	assert.Equal(t, 60, resp.SlotDurationMinutes)
	require.Len(t, resp.Slots, 4)
	assert.Equal(t, "08:00", resp.Slots[0].StartTime)
	assert.Equal(t, "12:00", resp.Slots[3].EndTime)
	assert.Len(t, resp.Slots[0].FreeCourts, 2)
	require.NotNil(t, resp.Slots[0].Quote)
	assert.Equal(t, int64(10000), resp.Slots[0].Quote.Price)
}

func TestHandler_ClosedDayHasNoSlots(t *testing.T) {
	r, _ := newRouter(t)

	w := get(r, "/api/v1/facilities/1/sports/10/availability?date=2030-03-05")

	require.Equal(t, http.StatusOK, w.Code)
	var resp DailyAvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Slots)
	assert.Empty(t, resp.Slots)
}

func TestHandler_Errors(t *testing.T) {
	r, _ := newRouter(t)

	tests := []struct {
		name     string
		url      string
		wantCode int
	}{
		{"missing date", "/api/v1/facilities/1/sports/10/availability", http.StatusBadRequest},
		{"bad date", "/api/v1/facilities/1/sports/10/availability?date=04.03.2030", http.StatusBadRequest},
		{"bad facility id", "/api/v1/facilities/x/sports/10/availability?date=2030-03-04", http.StatusBadRequest},
		{"unknown facility", "/api/v1/facilities/404/sports/10/availability?date=2030-03-04", http.StatusNotFound},
		{"sport not offered", "/api/v1/facilities/1/sports/99/availability?date=2030-03-04", http.StatusNotFound},
		{"date in past", "/api/v1/facilities/1/sports/10/availability?date=2030-02-01", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, get(r, tt.url).Code)
		})
	}
}
