// Package executor performs the upstream datafeed call for a bus-data query.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mohammed-shakir/busdata-gateway/internal/core/config"
	"github.com/mohammed-shakir/busdata-gateway/internal/core/model"
	"github.com/mohammed-shakir/busdata-gateway/internal/core/observability"
)

const upstreamName = "bods"

type Interface interface {
	FetchBusData(ctx context.Context, q model.BusDataQuery) ([]byte, error)
}

type Executor struct {
	logger      *slog.Logger
	client      *http.Client
	baseURL     string
	apiKey      string
	encodeQuery bool
}

func New(logger *slog.Logger, client *http.Client, cfg config.UpstreamCfg) (*Executor, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("upstream base url is empty")
	}
	if cfg.EncodeQuery {
		if _, err := url.Parse(cfg.BaseURL); err != nil {
			return nil, fmt.Errorf("parse upstream url: %w", err)
		}
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Executor{
		logger:      logger,
		client:      client,
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		encodeQuery: cfg.EncodeQuery,
	}, nil
}

// BuildURL returns the upstream URL for bbox.
//
// By default the values are interpolated without escaping, so a bbox holding
// '&' or '#' changes the upstream query. EncodeQuery switches to url.Values.
func (e *Executor) BuildURL(bbox string) string {
	if !e.encodeQuery {
		return e.baseURL + "?boundingBox=" + bbox + "&api_key=" + e.apiKey
	}
	u, err := url.Parse(e.baseURL)
	if err != nil {
		// New already parsed it
		return e.baseURL
	}
	q := u.Query()
	q.Set("boundingBox", bbox)
	q.Set("api_key", e.apiKey)
	u.RawQuery = q.Encode()
	return u.String()
}

func (e *Executor) redact(s string) string {
	if e.apiKey == "" {
		return s
	}
	s = strings.ReplaceAll(s, e.apiKey, "REDACTED")
	if esc := url.QueryEscape(e.apiKey); esc != e.apiKey {
		s = strings.ReplaceAll(s, esc, "REDACTED")
	}
	return s
}

// FetchBusData issues exactly one GET and returns the full body of a 2xx response.
// The body is buffered in memory with no size cap.
func (e *Executor) FetchBusData(ctx context.Context, q model.BusDataQuery) ([]byte, error) {
	target := e.BuildURL(q.BoundingBox)
	safeURL := e.redact(target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Op: "build request", URL: safeURL, Err: unwrapURLError(err)}
	}

	e.logger.DebugContext(ctx, "forward bus data request",
		"upstream", safeURL,
		"has_bbox", q.HasBoundingBox)

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		observability.ObserveUpstreamLatency(upstreamName, "error", time.Since(start).Seconds())
		observability.IncUpstreamFailure(upstreamName, observability.FailureTransport, 0)
		return nil, &TransportError{Op: http.MethodGet, URL: safeURL, Err: unwrapURLError(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.ObserveUpstreamLatency(upstreamName, "error", time.Since(start).Seconds())
		observability.IncUpstreamFailure(upstreamName, observability.FailureStatus, resp.StatusCode)
		// drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 8<<10))
		serr := newStatusError(resp)
		e.logger.ErrorContext(ctx, "API error",
			"status", serr.StatusCode,
			"reason", serr.Reason)
		return nil, serr
	}

	b, err := io.ReadAll(resp.Body)
	dur := time.Since(start)
	if err != nil {
		observability.ObserveUpstreamLatency(upstreamName, "error", dur.Seconds())
		observability.IncUpstreamFailure(upstreamName, observability.FailureRead, resp.StatusCode)
		return nil, &TransportError{Op: "read body", Err: err}
	}

	observability.ObserveUpstreamLatency(upstreamName, "ok", dur.Seconds())
	observability.ObserveUpstreamBytes(upstreamName, len(b))
	e.logger.DebugContext(ctx, "forward done",
		"status", resp.StatusCode,
		"bytes", len(b),
		"duration", dur.String())
	return b, nil
}

// the url.Error text repeats the full URL, including the key
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}
