package config

import (
	"fmt"
	"strings"
)

const (
	TypeStatsdTagFormatInfluxdb = "influxdb"
	TypeStatsdTagFormatDatadog  = "datadog"
)

type TypeStatsdTagFormat struct {
	Value string
}

func (t *TypeStatsdTagFormat) Set(value string) error {
	lowercasedValue := strings.ToLower(value)

	switch lowercasedValue {
	case TypeStatsdTagFormatDatadog, TypeStatsdTagFormatInfluxdb:
		t.Value = lowercasedValue
	default:
		return fmt.Errorf("unknown tag format %s", value)
	}

	return nil
}

func (t TypeStatsdTagFormat) Get(defaultValue string) string {
	if t.Value == "" {
		return defaultValue
	}

	return t.Value
}

func (t *TypeStatsdTagFormat) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeStatsdTagFormat) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeStatsdTagFormat) String() string {
	return t.Value
}
