package config

import (
	"fmt"
	"strings"

	"github.com/alecthomas/units"
)

type TypeBytes struct {
	Value units.Base2Bytes
}

func (t *TypeBytes) Set(value string) error {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	if !strings.HasSuffix(normalizedValue, "b") {
		normalizedValue += "b"
	}

	// units expect KiB or KB
	if prefix, ok := strings.CutSuffix(normalizedValue, "ib"); ok {
		normalizedValue = strings.ToUpper(prefix) + "iB"
	} else {
		normalizedValue = strings.ToUpper(normalizedValue)
	}

	parsedValue, err := units.ParseBase2Bytes(normalizedValue)
	if err != nil {
		return fmt.Errorf("incorrect bytes value (%s): %w", value, err)
	}

	if parsedValue < 0 {
		return fmt.Errorf("%d should be positive number", parsedValue)
	}

	t.Value = parsedValue

	return nil
}

func (t TypeBytes) Get(defaultValue uint) uint {
	if t.Value == 0 {
		return defaultValue
	}

	return uint(t.Value)
}

func (t *TypeBytes) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeBytes) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeBytes) String() string {
	return strings.ToLower(t.Value.String())
}
