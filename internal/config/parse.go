package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
)

const (
	EnvBotToken = "BOT_TOKEN"
	EnvPort     = "PORT"
	EnvDebug    = "DEBUG"
)

func Parse(rawData []byte) (*Config, error) {
	tree, err := toml.LoadBytes(rawData)
	if err != nil {
		return nil, fmt.Errorf("cannot parse toml config: %w", err)
	}

	jsonBuf := &bytes.Buffer{}
	encoder := json.NewEncoder(jsonBuf)

	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "")

	if err := encoder.Encode(tree.ToMap()); err != nil {
		return nil, fmt.Errorf("cannot dump into interim format: %w", err)
	}

	conf := &Config{}
	decoder := json.NewDecoder(jsonBuf)

	decoder.DisallowUnknownFields()

	if err := decoder.Decode(conf); err != nil {
		return nil, fmt.Errorf("cannot parse a config: %w", err)
	}

	return conf, nil
}

// ReadEnvironment collects process environment. Values from dotenv files
// fill only those keys which are absent in a real environment. Missing
// dotenv files are ignored.
func ReadEnvironment(dotenvPaths ...string) (map[string]string, error) {
	env := map[string]string{}

	for _, path := range dotenvPaths {
		values, err := godotenv.Read(path)

		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}

		for k, v := range values {
			if _, ok := env[k]; !ok {
				env[k] = v
			}
		}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	return env, nil
}

// ApplyEnvironment overrides config values with environment ones.
// PORT enables a status server on all interfaces.
func ApplyEnvironment(conf *Config, env map[string]string) error {
	if value := env[EnvBotToken]; value != "" {
		if err := conf.BotToken.Set(value); err != nil {
			return fmt.Errorf("incorrect %s: %w", EnvBotToken, err)
		}
	}

	if value := env[EnvPort]; value != "" {
		if err := conf.Status.BindTo.Set(net.JoinHostPort("0.0.0.0", value)); err != nil {
			return fmt.Errorf("incorrect %s: %w", EnvPort, err)
		}

		conf.Status.Enabled.Set("true") //nolint: errcheck
	}

	if value := env[EnvDebug]; value != "" {
		if err := conf.Debug.Set(value); err != nil {
			return fmt.Errorf("incorrect %s: %w", EnvDebug, err)
		}
	}

	return nil
}
