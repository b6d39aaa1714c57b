package config

import (
	"fmt"
	"regexp"
	"strings"
)

var typeBotTokenRegexp = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]{20,}$`)

// TypeBotToken is a token given by @BotFather. It is never printed.
type TypeBotToken struct {
	Value string
}

func (t *TypeBotToken) Set(value string) error {
	value = strings.TrimSpace(value)

	if !typeBotTokenRegexp.MatchString(value) {
		return fmt.Errorf("incorrect bot token")
	}

	t.Value = value

	return nil
}

func (t TypeBotToken) Get(defaultValue string) string {
	if t.Value == "" {
		return defaultValue
	}

	return t.Value
}

// BotID returns a numeric part of the token.
func (t TypeBotToken) BotID() string {
	id, _, _ := strings.Cut(t.Value, ":")

	return id
}

func (t *TypeBotToken) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeBotToken) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeBotToken) String() string {
	if t.Value == "" {
		return ""
	}

	return t.BotID() + ":***"
}
