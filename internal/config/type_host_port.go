package config

import (
	"fmt"
	"net"
	"strconv"
)

type TypeHostPort struct {
	Value string
}

func (t *TypeHostPort) Set(value string) error {
	host, port, err := net.SplitHostPort(value)
	if err != nil {
		return fmt.Errorf("incorrect host:port value (%s): %w", value, err)
	}

	portNo, err := strconv.ParseUint(port, 10, 16) //nolint: gomnd
	if err != nil || portNo == 0 {
		return fmt.Errorf("incorrect port number (%s)", value)
	}

	t.Value = net.JoinHostPort(host, port)

	return nil
}

func (t TypeHostPort) Get(defaultValue string) string {
	if t.Value == "" {
		return defaultValue
	}

	return t.Value
}

func (t *TypeHostPort) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeHostPort) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeHostPort) String() string {
	return t.Value
}
