package config

import (
	"fmt"
	"strconv"
)

// maxCapacity is a sanity limit of records per chat.
const maxCapacity = 10_000_000

// TypeCapacity is a number of records kept per chat.
type TypeCapacity struct {
	Value int
}

func (t *TypeCapacity) Set(value string) error {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("value is not int (%s): %w", value, err)
	}

	if parsed <= 0 || parsed > maxCapacity {
		return fmt.Errorf("capacity should be in range (0, %d]: %s", maxCapacity, value)
	}

	t.Value = parsed

	return nil
}

func (t TypeCapacity) Get(defaultValue int) int {
	if t.Value == 0 {
		return defaultValue
	}

	return t.Value
}

func (t *TypeCapacity) UnmarshalJSON(data []byte) error {
	return t.Set(string(data))
}

func (t TypeCapacity) MarshalJSON() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeCapacity) String() string {
	return strconv.Itoa(t.Value)
}
