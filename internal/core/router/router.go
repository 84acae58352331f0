package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"

	"github.com/mohammed-shakir/busdata-gateway/internal/core/model"
	"github.com/mohammed-shakir/busdata-gateway/internal/core/observability"
)

// BusDataRoute is the only route owned by the gateway itself.
const BusDataRoute = "/busdata"

const fetchFailedMsg = "Failed to fetch bus data"

// fetches the raw upstream XML for a query
type BusDataFetcher interface {
	FetchBusData(ctx context.Context, q model.BusDataQuery) ([]byte, error)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HandleBusData relays the upstream XML with 200, or answers 500 with a JSON
// envelope for any failure. The upstream status code is not propagated.
func HandleBusData(logger *slog.Logger, f BusDataFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			observability.ObserveHTTP(r.Method, BusDataRoute, status, time.Since(start).Seconds())
		}()

		q := ParseBusDataQuery(r)

		body, err := f.FetchBusData(r.Context(), q)
		if err != nil {
			logger.ErrorContext(r.Context(), "error fetching and proxying bus data", "err", err)
			writeError(ww, err)
			return
		}

		ww.Header().Set("Content-Type", "application/xml")
		ww.WriteHeader(http.StatusOK)
		_, _ = ww.Write(body)
	}
}

// ParseBusDataQuery reads boundingBox without trimming or validating it.
func ParseBusDataQuery(r *http.Request) model.BusDataQuery {
	vals := r.URL.Query()
	return model.BusDataQuery{
		BoundingBox:    vals.Get("boundingBox"),
		HasBoundingBox: vals.Has("boundingBox"),
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(errorBody{Error: fetchFailedMsg, Message: err.Error()})
}
