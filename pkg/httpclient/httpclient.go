// Package httpclient provides a shared, pre-configured HTTP client factory.
// All outbound Dradis API traffic goes through a client built here so that
// connection pooling, timeouts, and TLS settings stay in one place.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
)

// Config holds HTTP client configuration options.
type Config struct {
	// Timeout is the total request timeout (default: defaults.HTTPTimeout).
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification. Dradis Pro
	// appliances commonly run with self-signed certificates, so the
	// default client enables this.
	InsecureSkipVerify bool

	// MaxIdleConns is the idle connection pool size.
	MaxIdleConns int

	// IdleConnTimeout is how long idle connections stay in the pool.
	IdleConnTimeout time.Duration

	// DialTimeout is the timeout for establishing connections.
	DialTimeout time.Duration

	// TLSHandshakeTimeout is the timeout for the TLS handshake.
	TLSHandshakeTimeout time.Duration
}

// DefaultConfig returns defaults suited to a single-host API bridge:
// small pool, generous timeout, TLS verification off for self-signed
// appliance certificates.
func DefaultConfig() Config {
	return Config{
		Timeout:             defaults.HTTPTimeout,
		InsecureSkipVerify:  true,
		MaxIdleConns:        defaults.MaxIdleConns,
		IdleConnTimeout:     defaults.IdleConnTimeout,
		DialTimeout:         defaults.DialTimeout,
		TLSHandshakeTimeout: defaults.TLSHandshakeTimeout,
	}
}

var (
	defaultClient *http.Client
	defaultOnce   sync.Once
)

// Default returns a shared, pre-configured HTTP client.
// The client is safe for concurrent use and pools connections to the
// Dradis host. Packages should prefer Default() over building their own.
func Default() *http.Client {
	defaultOnce.Do(func() {
		defaultClient = New(DefaultConfig())
	})
	return defaultClient
}

// New creates a new HTTP client with the given configuration.
// Zero values fall back to DefaultConfig equivalents.
func New(cfg Config) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.HTTPTimeout
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = defaults.MaxIdleConns
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = defaults.IdleConnTimeout
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaults.DialTimeout
	}
	if cfg.TLSHandshakeTimeout == 0 {
		cfg.TLSHandshakeTimeout = defaults.TLSHandshakeTimeout
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,

		ForceAttemptHTTP2:     true,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,

		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // self-signed appliances
		},
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}
