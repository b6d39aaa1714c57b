package network

import (
	"context"
	"net"
	"sync/atomic"
	"time"
)

// cooldownDialer puts a proxy aside after a run of failed dials.
//
// openThreshold consecutive failures start a cooldown of reconnectTimeout.
// While it lasts every dial fails with ErrCircuitBreakerOpened and the
// proxy is not touched. Any successful dial resets the run of failures.
type cooldownDialer struct {
	Dialer

	openThreshold    uint32
	reconnectTimeout time.Duration
	now              func() time.Time

	failures      atomic.Uint32
	cooldownUntil atomic.Int64 // unix nanoseconds, 0 if proxy is available
}

// Available tells if a proxy can be dialed right now. Failover dialer
// uses it to skip proxies on cooldown.
func (c *cooldownDialer) Available() bool {
	until := c.cooldownUntil.Load()

	return until == 0 || c.now().UnixNano() >= until
}

func (c *cooldownDialer) Dial(network, address string) (net.Conn, error) {
	return c.DialContext(context.Background(), network, address)
}

func (c *cooldownDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if !c.Available() {
		return nil, ErrCircuitBreakerOpened
	}

	conn, err := c.Dialer.DialContext(ctx, network, address)

	// a caller has gone, this is not a fault of the proxy
	if ctxErr := ctx.Err(); ctxErr != nil {
		if err == nil && conn != nil {
			conn.Close()
		}

		return nil, ctxErr //nolint: wrapcheck
	}

	if err != nil {
		c.fail()

		return nil, err //nolint: wrapcheck
	}

	c.failures.Store(0)
	c.cooldownUntil.Store(0)

	return conn, nil
}

func (c *cooldownDialer) fail() {
	if c.failures.Add(1) < c.openThreshold {
		return
	}

	c.failures.Store(0)
	c.cooldownUntil.Store(c.now().Add(c.reconnectTimeout).UnixNano())
}

func newCooldownDialer(baseDialer Dialer,
	openThreshold uint32, reconnectTimeout time.Duration,
) *cooldownDialer {
	return &cooldownDialer{
		Dialer:           baseDialer,
		openThreshold:    openThreshold,
		reconnectTimeout: reconnectTimeout,
		now:              time.Now,
	}
}
