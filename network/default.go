package network

import (
	"context"
	"fmt"
	"net"
	"time"
)

type defaultDialer struct {
	net.Dialer
}

func (d *defaultDialer) Dial(network, address string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, address)
}

func (d *defaultDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	switch network {
	case "tcp", "tcp4", "tcp6": //nolint: goconst
	default:
		return nil, fmt.Errorf("unsupported network %s", network)
	}

	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("cannot dial to %s: %w", address, err)
	}

	return conn, nil
}

// NewDefaultDialer build a new dialer which dials bypassing proxies
// etc.
//
// The most default one you can imagine.
func NewDefaultDialer(timeout time.Duration) (Dialer, error) {
	switch {
	case timeout < 0:
		return nil, fmt.Errorf("timeout %v should be positive number", timeout)
	case timeout == 0:
		timeout = DefaultTimeout
	}

	return &defaultDialer{
		Dialer: net.Dialer{
			Timeout: timeout,
		},
	}, nil
}
