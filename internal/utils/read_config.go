package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/akab00m/dupclean/internal/config"
)

// ReadConfig reads a TOML config, applies environment overrides
// (including .env files in a working directory and next to the config)
// and validates a result.
func ReadConfig(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	conf, err := config.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}

	env, err := config.ReadEnvironment(".env", filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, fmt.Errorf("cannot read environment: %w", err)
	}

	if err := config.ApplyEnvironment(conf, env); err != nil {
		return nil, fmt.Errorf("cannot apply environment: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return conf, nil
}
