package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuth(t *testing.T) {
	var gotID int64
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantID   int64
	}{
		{name: "valid header", header: "42", wantCode: http.StatusNoContent, wantID: 42},
		{name: "missing header", header: "", wantCode: http.StatusUnauthorized},
		{name: "not a number", header: "abc", wantCode: http.StatusUnauthorized},
		{name: "non positive", header: "0", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotOK = 0, false
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set(HeaderUserID, tt.header)
			}
			w := httptest.NewRecorder()

			Auth(next).ServeHTTP(w, r)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantID, gotID)
			assert.Equal(t, tt.wantID != 0, gotOK)
		})
	}
}
