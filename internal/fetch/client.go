package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/apm-labs/apm/internal/githost"
)

const defaultTimeout = 2 * time.Minute

// Client is the HTTP layer under the Fetcher: DNS-cached dialing, one
// circuit breaker per platform host, and token masking on every error it
// surfaces. It performs no retries of its own; the main-to-master branch
// fallback in the Fetcher is the only automatic retry in the system.
type Client struct {
	http      *http.Client
	userAgent string

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

// NewClient builds a Client with a DNS-cached transport.
func NewClient(userAgent string) *Client {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, fmt.Errorf("no resolved address for %s is dialable", host)
				},
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: userAgent,
		breakers:  make(map[string]*circuit.Breaker),
	}
}

// SetHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.http = hc
}

func (c *Client) breaker(host string) *circuit.Breaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.breakers[host]; ok {
		return b
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 30 * time.Second
	bo.MaxInterval = 5 * time.Minute
	bo.Reset()

	b := circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    bo,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	c.breakers[host] = b
	return b
}

// Get performs a single GET and returns the body. Error values wrap the
// package sentinels so callers can branch on the failure class; any
// credential material in messages is masked before return.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	host := urlHost(rawURL)
	b := c.breaker(host)
	if !b.Ready() {
		return nil, fmt.Errorf("circuit open for %s: %w", host, ErrUpstreamDown)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", maskedErr(err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		b.Fail()
		return nil, fmt.Errorf("requesting %s: %w", githost.MaskToken(rawURL), maskedErr(err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		b.Success()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response from %s: %w", githost.MaskToken(rawURL), maskedErr(err))
		}
		return data, nil

	case resp.StatusCode == http.StatusNotFound:
		// A 404 is an answer, not a platform failure.
		b.Success()
		return nil, fmt.Errorf("%s: %w", githost.MaskToken(rawURL), ErrNotFound)

	case resp.StatusCode == http.StatusUnauthorized:
		b.Success()
		return nil, fmt.Errorf("%s: %w", githost.MaskToken(rawURL), ErrUnauthorized)

	case resp.StatusCode == http.StatusForbidden:
		b.Success()
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return nil, fmt.Errorf("%s: %w", githost.MaskToken(rawURL), ErrRateLimited)
		}
		return nil, fmt.Errorf("%s: %w", githost.MaskToken(rawURL), ErrUnauthorized)

	case resp.StatusCode == http.StatusTooManyRequests:
		b.Success()
		return nil, fmt.Errorf("%s: %w", githost.MaskToken(rawURL), ErrRateLimited)

	case resp.StatusCode >= 500:
		b.Fail()
		return nil, fmt.Errorf("%s returned %d: %w", githost.MaskToken(rawURL), resp.StatusCode, ErrUpstreamDown)

	default:
		b.Success()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s returned %d: %s",
			githost.MaskToken(rawURL), resp.StatusCode, githost.MaskToken(string(body)))
	}
}

func maskedErr(err error) error {
	return fmt.Errorf("%s", githost.MaskToken(err.Error()))
}

func urlHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
