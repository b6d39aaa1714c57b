// Package network contains a set of dialers and an HTTP client factory
// used to talk to the Telegram Bot API.
//
// Bot API is the only outbound destination, so there is no custom DNS
// resolution here: a dialer either connects directly or goes through a
// SOCKS5 proxy, optionally wrapped with a cooldown circuit breaker.
package network

import (
	"context"
	"errors"
	"net"
	"time"
)

const (
	// DefaultTimeout is a default timeout for establishing TCP
	// connection.
	DefaultTimeout = 10 * time.Second

	// DefaultHTTPTimeout is a default timeout of a single HTTP request.
	// Long polling keeps requests open up to a minute, so this has to be
	// longer than a polling timeout.
	DefaultHTTPTimeout = 90 * time.Second

	// DefaultUserAgent is a default value of User-Agent header.
	DefaultUserAgent = "dupclean"

	// ProxyDialerOpenThreshold is a number of consecutive failures after
	// which proxy is put on cooldown.
	ProxyDialerOpenThreshold = 5

	// ProxyDialerReconnectTimeout is a cooldown period of a failed proxy.
	ProxyDialerReconnectTimeout = time.Minute
)

// ErrCircuitBreakerOpened is returned when proxy is on cooldown.
var ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")

// Dialer defines an interface which is required to bootstrap a network
// instance from. Its methods are compatible with golang.org/x/net/proxy
// Dialer and ContextDialer.
type Dialer interface {
	Dial(network, address string) (net.Conn, error)
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}
