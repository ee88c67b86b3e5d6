package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const userAgent = "uniform-prompt-studio/1.0"

type Options struct {
	PreferIPv4 bool
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// New builds the outbound client shared by the render and bot clients.
func New(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if opts.PreferIPv4 {
				return dialer.DialContext(ctx, "tcp4", addr)
			}
			return dialer.DialContext(ctx, network, addr)
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingTransport{next: transport, logger: opts.Logger},
	}
}

// loggingTransport stamps the user agent and logs each outbound call at
// debug level. URLs are not logged because bot API paths carry the token.
type loggingTransport struct {
	next   http.RoundTripper
	logger zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", userAgent)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	event := t.logger.Debug().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Dur("duration", time.Since(start))
	if err != nil {
		event.Err(err).Msg("outbound request failed")
		return nil, err
	}
	event.Int("status", resp.StatusCode).Msg("outbound request")
	return resp, nil
}
