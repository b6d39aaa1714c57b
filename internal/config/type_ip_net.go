package config

import (
	"fmt"
	"net"
	"strings"
)

// TypeIPNet is a network in CIDR notation. A plain IP address means a
// network with a single host.
type TypeIPNet struct {
	Value *net.IPNet
}

func (t *TypeIPNet) Set(value string) error {
	if !strings.Contains(value, "/") {
		ip := net.ParseIP(value)
		if ip == nil {
			return fmt.Errorf("incorrect ip address %s", value)
		}

		if ip.To4() != nil {
			value += "/32"
		} else {
			value += "/128"
		}
	}

	_, ipNet, err := net.ParseCIDR(value)
	if err != nil {
		return fmt.Errorf("incorrect cidr %s: %w", value, err)
	}

	t.Value = ipNet

	return nil
}

func (t TypeIPNet) Get(defaultValue *net.IPNet) *net.IPNet {
	if t.Value == nil {
		return defaultValue
	}

	return t.Value
}

func (t *TypeIPNet) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeIPNet) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeIPNet) String() string {
	if t.Value == nil {
		return ""
	}

	return t.Value.String()
}
