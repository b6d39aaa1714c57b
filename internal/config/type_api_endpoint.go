package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// TypeAPIEndpoint is a Bot API endpoint template. It is an http(s) URL
// with 2 %s placeholders: a bot token and a method name. A self-hosted
// Bot API server is usually on a local address, so loopback and private
// hosts are fine here.
type TypeAPIEndpoint struct {
	Value string
}

func (t *TypeAPIEndpoint) Set(value string) error {
	if strings.Count(value, "%s") != 2 { //nolint: gomnd
		return fmt.Errorf("endpoint should have placeholders for token and method (%s)", value)
	}

	parsedURL, err := url.Parse(strings.ReplaceAll(value, "%s", "x"))
	if err != nil {
		return fmt.Errorf("incorrect url (%s): %w", value, err)
	}

	switch parsedURL.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("unknown schema %s (%s)", parsedURL.Scheme, value)
	}

	if parsedURL.User != nil {
		return fmt.Errorf("credentials in url are not allowed (%s)", value)
	}

	if parsedURL.Hostname() == "" {
		return fmt.Errorf("incorrect host in url %s", value)
	}

	if port := parsedURL.Port(); port != "" {
		portNo, err := strconv.Atoi(port)
		if err != nil || portNo <= 0 || portNo > 65535 {
			return fmt.Errorf("incorrect port in url %s", value)
		}
	}

	t.Value = value

	return nil
}

func (t TypeAPIEndpoint) Get(defaultValue string) string {
	if t.Value == "" {
		return defaultValue
	}

	return t.Value
}

// IsDefault returns true if Telegram-hosted Bot API is used.
func (t TypeAPIEndpoint) IsDefault() bool {
	return t.Value == "" || strings.HasPrefix(t.Value, "https://api.telegram.org/")
}

func (t *TypeAPIEndpoint) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeAPIEndpoint) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeAPIEndpoint) String() string {
	return t.Value
}
