// Package httputil provides shared HTTP clients with connection pooling
// and safe response handling for outbound honeypot traffic.
package httputil

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// MaxResponseSize caps response body reads from external services.
const MaxResponseSize = 4 * 1024 * 1024 // 4MB

// Shared transport with connection pooling. Safe for concurrent use;
// reusing TCP connections matters because every terminal session fires
// an outbound report and most replies come from the same LLM host.
var sharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

// TimeoutTier groups outbound calls by how long they may reasonably run.
type TimeoutTier int

const (
	// TierReport for intelligence report delivery (5s)
	TierReport TimeoutTier = iota
	// TierStandard for ordinary API calls (30s)
	TierStandard
	// TierModel for LLM completions, which can be slow (60s)
	TierModel
)

var timeoutDurations = map[TimeoutTier]time.Duration{
	TierReport:   5 * time.Second,
	TierStandard: 30 * time.Second,
	TierModel:    60 * time.Second,
}

// Singleton clients per tier, initialized once and reused everywhere.
var (
	clientReport   *http.Client
	clientStandard *http.Client
	clientModel    *http.Client
	clientOnce     sync.Once
)

func initClients() {
	clientReport = &http.Client{
		Timeout:   timeoutDurations[TierReport],
		Transport: sharedTransport,
	}
	clientStandard = &http.Client{
		Timeout:   timeoutDurations[TierStandard],
		Transport: sharedTransport,
	}
	clientModel = &http.Client{
		Timeout:   timeoutDurations[TierModel],
		Transport: sharedTransport,
	}
}

// Client returns a shared HTTP client for the given timeout tier. These
// clients share one connection pool and should be used instead of creating
// per-request http.Client instances.
func Client(tier TimeoutTier) *http.Client {
	clientOnce.Do(initClients)
	switch tier {
	case TierReport:
		return clientReport
	case TierModel:
		return clientModel
	default:
		return clientStandard
	}
}

// ClientWithTimeout returns a client on the shared transport with a custom
// timeout. Useful when the deadline comes from configuration rather than a
// fixed tier.
func ClientWithTimeout(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = timeoutDurations[TierStandard]
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}

// ReadResponseBody reads an HTTP response body with a size limit so a
// misbehaving endpoint cannot exhaust memory.
func ReadResponseBody(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = MaxResponseSize
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadErrorBody reads a response body for error reporting with a small limit.
func ReadErrorBody(r io.Reader) ([]byte, error) {
	const maxErrorSize = 256 * 1024
	return io.ReadAll(io.LimitReader(r, maxErrorSize))
}

// DrainAndClose drains and closes a response body so the underlying
// connection returns to the pool.
func DrainAndClose(body io.ReadCloser) {
	if body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxResponseSize))
		_ = body.Close()
	}
}
