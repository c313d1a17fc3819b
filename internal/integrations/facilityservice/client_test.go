package facilityservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestClient_GetFacility(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/facilities/1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": 1,
				"name": "Center Court",
				"timezone": "Europe/Moscow",
				"courts": [
					{"id": 11, "name": "A", "sport_ids": [10], "is_active": true},
					{"id": 12, "name": "B", "sport_ids": [10, 20], "is_active": false}
				],
				"manager_ids": [500]
			}`))
		case "/internal/facilities/2":
			w.WriteHeader(http.StatusNotFound)
		case "/internal/facilities/3":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		case "/internal/facilities/4":
			_, _ = w.Write([]byte(`{"id": 5}`))
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nopLogger{})
	ctx := context.Background()

	facility, err := client.GetFacility(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Center Court", facility.Name)
	assert.Len(t, facility.Courts, 2)
	assert.True(t, facility.IsManager(500))
	assert.Len(t, facility.CourtsForSport(10), 1, "inactive court is not offered")

	_, err = client.GetFacility(ctx, 2)
	assert.ErrorIs(t, err, ErrFacilityNotFound)

	_, err = client.GetFacility(ctx, 3)
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Contains(t, err.Error(), "upstream down")

	_, err = client.GetFacility(ctx, 4)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = client.GetFacility(ctx, 9)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
