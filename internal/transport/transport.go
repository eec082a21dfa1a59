// Package transport builds the HTTP transport used for catalog platform calls.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// =============================================================================
// TLS FINGERPRINT TRANSPORT
// =============================================================================
//
// Shared WordPress hosts commonly sit behind CDNs that rate-limit Go's TLS
// client hello (JA3 fingerprinting). With fingerprinting enabled, upstream
// connections are dialed with uTLS presenting Chrome's hello:
//
//   1. uTLS with HelloChrome_Auto for the handshake
//   2. ALPN negotiates h2 or http/1.1 naturally
//   3. http2.Transport frames h2 connections, http.Transport the rest
//
// Plain http:// URLs (local stores, tests) never go through uTLS.
// =============================================================================

// Options configures the upstream transport.
type Options struct {
	// Timeout bounds dialing and the TLS handshake.
	Timeout time.Duration
	// Fingerprint enables the Chrome TLS fingerprint. When false, a clone of
	// http.DefaultTransport is returned.
	Fingerprint bool
}

// New returns the RoundTripper for platform calls.
func New(opts Options) http.RoundTripper {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if !opts.Fingerprint {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSHandshakeTimeout = opts.Timeout
		return t
	}
	return NewChromeTransport(opts.Timeout)
}

// NewChromeTransport creates an http.RoundTripper that presents Chrome's TLS
// fingerprint to upstream servers, speaking HTTP/2 or HTTP/1.1 per ALPN.
func NewChromeTransport(timeout time.Duration) http.RoundTripper {
	dialer := &net.Dialer{Timeout: timeout}

	h2Transport := &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return dialChromeTLS(ctx, dialer, network, addr)
		},
	}

	h1Transport := &http.Transport{
		DialContext: dialer.DialContext,
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialChromeTLS(ctx, dialer, network, addr)
		},
		ForceAttemptHTTP2:   false,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}

	return &chromeTransport{
		h2: h2Transport,
		h1: h1Transport,
	}
}

// chromeTransport wraps HTTP/2 and HTTP/1.1 transports with Chrome TLS fingerprint.
type chromeTransport struct {
	h2 *http2.Transport
	h1 *http.Transport
}

// RoundTrip implements http.RoundTripper.
// https requests try HTTP/2 first. Idempotent requests fall back to HTTP/1.1
// on any h2 failure; order submissions only when h2 was never negotiated, so a
// POST is not sent twice.
func (t *chromeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.h1.RoundTrip(req)
	}

	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}
	if !isIdempotent(req.Method) && !strings.Contains(err.Error(), "ALPN") {
		return nil, err
	}
	return t.h1.RoundTrip(req)
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// dialChromeTLS establishes a TLS connection with Chrome's fingerprint.
func dialChromeTLS(ctx context.Context, dialer *net.Dialer, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloChrome_Auto)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
