package network

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
)

type availabilityChecker interface {
	Available() bool
}

type failoverDialer struct {
	dialers []Dialer
}

func (f failoverDialer) Dial(network, address string) (net.Conn, error) {
	return f.DialContext(context.Background(), network, address)
}

func (f failoverDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	var errs []error

	for _, idx := range rand.Perm(len(f.dialers)) {
		dialer := f.dialers[idx]

		if checker, ok := dialer.(availabilityChecker); ok && !checker.Available() {
			errs = append(errs, ErrCircuitBreakerOpened)

			continue
		}

		conn, err := dialer.DialContext(ctx, network, address)
		if err == nil {
			return conn, nil
		}

		errs = append(errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("all proxies failed: %w", errors.Join(errs...))
}

// NewFailoverDialer spreads connections between several dialers in random
// order. If a dialer fails, the next one is tried. Proxies on cooldown are
// skipped without dialing.
func NewFailoverDialer(dialers []Dialer) (Dialer, error) {
	switch len(dialers) {
	case 0:
		return nil, errors.New("no dialers are given")
	case 1:
		return dialers[0], nil
	}

	return failoverDialer{
		dialers: dialers,
	}, nil
}
