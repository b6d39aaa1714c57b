package network

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

type networkHTTPTransport struct {
	userAgent string
	next      http.RoundTripper
}

func (n networkHTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", n.userAgent)

	return n.next.RoundTrip(req) //nolint: wrapcheck
}

// Network is a dialer which also knows how to build HTTP clients on top
// of itself.
type Network struct {
	dialer      Dialer
	httpTimeout time.Duration
	userAgent   string
}

func (n *Network) Dial(protocol, address string) (net.Conn, error) {
	return n.DialContext(context.Background(), protocol, address)
}

func (n *Network) DialContext(ctx context.Context, protocol, address string) (net.Conn, error) {
	conn, err := n.dialer.DialContext(ctx, protocol, address)
	if err != nil {
		return nil, fmt.Errorf("cannot dial to %s:%s: %w", protocol, address, err)
	}

	return conn, nil
}

// MakeHTTPClient builds an HTTP client which dials with a given function.
// If dialFunc is nil, network dials itself.
func (n *Network) MakeHTTPClient(dialFunc func(ctx context.Context,
	network, address string) (net.Conn, error),
) *http.Client {
	if dialFunc == nil {
		dialFunc = n.DialContext
	}

	return makeHTTPClient(n.userAgent, n.httpTimeout, dialFunc)
}

// NewNetwork assembles a Network based on a dialer and given params.
func NewNetwork(dialer Dialer, userAgent string, httpTimeout time.Duration) (*Network, error) {
	switch {
	case httpTimeout < 0:
		return nil, fmt.Errorf("timeout should be positive number %s", httpTimeout)
	case httpTimeout == 0:
		httpTimeout = DefaultHTTPTimeout
	}

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Network{
		dialer:      dialer,
		httpTimeout: httpTimeout,
		userAgent:   userAgent,
	}, nil
}

func makeHTTPClient(userAgent string,
	timeout time.Duration,
	dialFunc func(ctx context.Context, network, address string) (net.Conn, error),
) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: networkHTTPTransport{
			userAgent: userAgent,
			next: &http.Transport{
				DialContext:         dialFunc,
				ForceAttemptHTTP2:   true,
				MaxIdleConnsPerHost: 16, //nolint: gomnd
				IdleConnTimeout:     DefaultHTTPTimeout,
			},
		},
	}
}
