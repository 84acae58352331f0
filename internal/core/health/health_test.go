package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLiveness_Handler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	Liveness()(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	ct := rr.Header().Get("Content-Type")
	if !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content-type=%q want text/plain", ct)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "ok" {
		t.Fatalf("body=%q want ok", got)
	}
}

func TestReadiness(t *testing.T) {
	ok := Check{Name: "static", Fn: func() error { return nil }}
	bad := Check{Name: "api_key", Fn: func() error { return errors.New("API_KEY is empty") }}

	tests := []struct {
		name     string
		checks   []Check
		wantCode int
		wantBody string
	}{
		{"no checks", nil, http.StatusOK, `"status":"ready"`},
		{"all pass", []Check{ok}, http.StatusOK, `"status":"ready"`},
		{"one fails", []Check{ok, bad}, http.StatusServiceUnavailable, `"api_key":"API_KEY is empty"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Readiness(tc.checks...)(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rr.Code != tc.wantCode {
				t.Fatalf("status=%d want %d", rr.Code, tc.wantCode)
			}
			if !strings.Contains(rr.Body.String(), tc.wantBody) {
				t.Fatalf("body=%s want substring %s", rr.Body.String(), tc.wantBody)
			}
		})
	}
}
