package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mylog "github.com/mohammed-shakir/busdata-gateway/internal/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

func TestLogging_RequestID(t *testing.T) {
	var buf bytes.Buffer
	zl := mylog.Build(mylog.Config{Level: "debug"}, &buf)
	l := mylog.NewSlog(&zl)

	var seen string
	h := Logging(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = mylog.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/busdata", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "given-id" || rr.Header().Get("X-Request-ID") != "given-id" {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seen, rr.Header().Get("X-Request-ID"))
	}
	out := buf.String()
	for _, want := range []string{`"request_id":"given-id"`, `"status":418`, `"path":"/busdata"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line missing %s: %s", want, out)
		}
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if id := rr.Header().Get("X-Request-ID"); len(id) != 16 {
		t.Fatalf("generated id=%q", id)
	}
}

func TestRecover(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recover(l)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500", rr.Code)
	}
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	h := CORS()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/busdata", nil)
	req.Header.Set("Origin", "https://maps.example.org")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin=%q want *", got)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("body=%q", rr.Body.String())
	}

	pre := httptest.NewRequest(http.MethodOptions, "/busdata", nil)
	pre.Header.Set("Origin", "http://localhost:5173")
	pre.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, pre)
	if rr.Code != http.StatusOK && rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status=%d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("preflight allow-origin=%q want *", got)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), http.MethodGet) {
		t.Fatalf("preflight allow-methods=%q", rr.Header().Get("Access-Control-Allow-Methods"))
	}
}
