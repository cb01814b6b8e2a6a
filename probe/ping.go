package probe

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/check-cx/monitor/internal/pool"
	"github.com/check-cx/monitor/internal/tlsutil"
)

// MeasurePing measures transport-level round-trip time to the origin of
// endpoint. It tries HEAD first (no redirects, no caching), falls back to
// GET on any error, and never returns an error itself — a nil latency
// means "could not measure", not a caller-visible failure.
func MeasurePing(ctx context.Context, endpoint string) *int {
	origin, ok := originOf(endpoint)
	if !ok {
		return nil
	}

	client := tlsutil.SecureHTTPClient(PingTimeout)
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	if ms, ok := doPing(pingCtx, client, http.MethodHead, origin); ok {
		return &ms
	}
	if ms, ok := doPing(pingCtx, client, http.MethodGet, origin); ok {
		return &ms
	}
	return nil
}

func doPing(ctx context.Context, client *http.Client, method, origin string) (int, bool) {
	req, err := http.NewRequestWithContext(ctx, method, origin, nil)
	if err != nil {
		return 0, false
	}
	req.Header.Set("User-Agent", "check-cx/0.1.0")
	req.Header.Set("Cache-Control", "no-store")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	buf := pool.ByteBufferPool.Get()
	defer pool.ByteBufferPool.Put(buf)
	io.Copy(buf, resp.Body)

	return int(time.Since(start).Milliseconds()), true
}

func originOf(endpoint string) (string, bool) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	origin := &url.URL{Scheme: u.Scheme, Host: u.Host}
	return origin.String(), true
}
