package executor

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ErrUpstream is wrapped by every error returned from Fetch.
var ErrUpstream = errors.New("upstream error")

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Reason     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch data from the external API. Status: %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

func newStatusError(resp *http.Response) *StatusError {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return &StatusError{StatusCode: resp.StatusCode, Reason: reason}
}

// TransportError reports a call that produced no usable response.
type TransportError struct {
	Op  string
	URL string // api_key redacted
	Err error
}

func (e *TransportError) Error() string {
	if e.URL == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrUpstream, e.Err} }
