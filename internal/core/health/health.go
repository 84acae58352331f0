// Package health serves the liveness and readiness probes of the ops listener.
package health

import (
	"net/http"

	json "github.com/goccy/go-json"
)

func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// Check reports a named readiness condition; a nil error means ready.
type Check struct {
	Name string
	Fn   func() error
}

func Readiness(checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		type resp struct {
			Status string            `json:"status"`
			Failed map[string]string `json:"failed,omitempty"`
		}
		out := resp{Status: "ready"}
		for _, c := range checks {
			if err := c.Fn(); err != nil {
				if out.Failed == nil {
					out.Failed = map[string]string{}
				}
				out.Failed[c.Name] = err.Error()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if len(out.Failed) > 0 {
			out.Status = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
