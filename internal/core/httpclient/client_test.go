package httpclient

import (
	"net/http"
	"testing"
	"time"
)

func TestNewOutbound_Timeout(t *testing.T) {
	if c := NewOutbound(0); c.Timeout != 0 {
		t.Fatalf("timeout=%v want none", c.Timeout)
	}
	c := NewOutbound(3 * time.Second)
	if c.Timeout != 3*time.Second {
		t.Fatalf("timeout=%v want 3s", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport=%T want *http.Transport", c.Transport)
	}
	if tr.MaxIdleConnsPerHost != 128 || tr.Proxy == nil {
		t.Fatalf("unexpected transport settings: %+v", tr)
	}
}
