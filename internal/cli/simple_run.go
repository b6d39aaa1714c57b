package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/akab00m/dupclean/internal/config"
)

// SimpleRun starts a bot from environment variables only. This is how
// the bot is usually deployed on hosting platforms: BOT_TOKEN is given
// and PORT is where a status server should listen.
type SimpleRun struct {
	Token     string        `kong:"help='Bot token. BOT_TOKEN environment variable is used if empty.',short='t'"` //nolint: lll
	Debug     bool          `kong:"help='Run in debug mode.',short='d'"`
	Capacity  int           `kong:"help='Number of remembered messages per chat.',default='10000',short='c'"`
	Retention time.Duration `kong:"help='Forget messages older than this. 0 keeps them until evicted.',default='0s'"` //nolint: lll
	AdminOnly bool          `kong:"help='Allow commands to chat administrators only.'"`
}

func (s *SimpleRun) Run(cli *CLI, version string) error {
	conf := &config.Config{}

	env, err := config.ReadEnvironment(".env")
	if err != nil {
		return fmt.Errorf("cannot read environment: %w", err)
	}

	if err := config.ApplyEnvironment(conf, env); err != nil {
		return fmt.Errorf("incorrect environment: %w", err)
	}

	if s.Token != "" {
		if err := conf.BotToken.Set(s.Token); err != nil {
			return fmt.Errorf("incorrect token: %w", err)
		}
	}

	if s.Debug {
		conf.Debug.Set("true") //nolint: errcheck
	}

	if err := conf.Detector.Capacity.Set(strconv.Itoa(s.Capacity)); err != nil {
		return fmt.Errorf("incorrect capacity: %w", err)
	}

	if s.Retention > 0 {
		if err := conf.Detector.Retention.Set(s.Retention.String()); err != nil {
			return fmt.Errorf("incorrect retention: %w", err)
		}
	}

	conf.Telegram.AdminOnly.Set(strconv.FormatBool(s.AdminOnly)) //nolint: errcheck

	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	return runBot(conf, version)
}
