package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Optional struct {
	Enabled TypeBool `json:"enabled"`
}

type Config struct {
	Debug    TypeBool     `json:"debug"`
	BotToken TypeBotToken `json:"botToken"`
	Telegram struct {
		APIEndpoint    TypeAPIEndpoint `json:"apiEndpoint"`
		PollingTimeout TypeDuration    `json:"pollingTimeout"`
		Workers        TypeConcurrency `json:"workers"`
		AdminOnly      TypeBool        `json:"adminOnly"`
		IgnoreBots     TypeBool        `json:"ignoreBots"`
		AutoActivate   TypeBool        `json:"autoActivate"`
		WelcomeMessage TypeBool        `json:"welcomeMessage"`
	} `json:"telegram"`
	Detector struct {
		Capacity        TypeCapacity `json:"capacity"`
		Retention       TypeDuration `json:"retention"`
		IncludeCaptions TypeBool     `json:"includeCaptions"`
		SweepInterval   TypeDuration `json:"sweepInterval"`
	} `json:"detector"`
	Deleter struct {
		Concurrency      TypeConcurrency `json:"concurrency"`
		PerSecond        TypeRateLimit   `json:"perSecond"`
		Burst            TypeConcurrency `json:"burst"`
		MaxErrorsPerChat TypeConcurrency `json:"maxErrorsPerChat"`
		RetryAttempts    TypeConcurrency `json:"retryAttempts"`
		ReplayGuard      struct {
			Optional

			MaxSize   TypeBytes     `json:"maxSize"`
			ErrorRate TypeErrorRate `json:"errorRate"`
		} `json:"replayGuard"`
	} `json:"deleter"`
	Network struct {
		Timeout struct {
			TCP  TypeDuration `json:"tcp"`
			HTTP TypeDuration `json:"http"`
		} `json:"timeout"`
		Proxies []TypeProxyURL `json:"proxies"`
	} `json:"network"`
	Status struct {
		Optional

		BindTo    TypeHostPort `json:"bindTo"`
		Allowlist []TypeIPNet  `json:"allowlist"`
	} `json:"status"`
	Stats struct {
		StatsD struct {
			Optional

			Address      TypeHostPort        `json:"address"`
			MetricPrefix TypeMetricPrefix    `json:"metricPrefix"`
			TagFormat    TypeStatsdTagFormat `json:"tagFormat"`
		} `json:"statsd"`
		Prometheus struct {
			Optional

			BindTo       TypeHostPort     `json:"bindTo"`
			HTTPPath     TypeHTTPPath     `json:"httpPath"`
			MetricPrefix TypeMetricPrefix `json:"metricPrefix"`
		} `json:"prometheus"`
	} `json:"stats"`
}

func (c *Config) Validate() error {
	if c.BotToken.Get("") == "" {
		return fmt.Errorf("bot token is not set")
	}

	if c.Detector.Retention.Value > 0 && c.Detector.SweepInterval.Value > c.Detector.Retention.Value {
		return fmt.Errorf("detector.sweepInterval (%s) should not exceed detector.retention (%s)",
			c.Detector.SweepInterval.String(), c.Detector.Retention.String())
	}

	if httpTimeout := c.Network.Timeout.HTTP.Value; httpTimeout > 0 &&
		httpTimeout <= c.Telegram.PollingTimeout.Value {
		return fmt.Errorf("network.timeout.http (%s) should be longer than telegram.pollingTimeout (%s)",
			c.Network.Timeout.HTTP.String(), c.Telegram.PollingTimeout.String())
	}

	if c.Deleter.PerSecond.Value > 0 && c.Deleter.Burst.Value == 0 {
		return fmt.Errorf("deleter.burst must be > 0 when deleter.perSecond is set")
	}

	if c.Status.Enabled.Get(false) && c.Status.BindTo.Get("") == "" {
		return fmt.Errorf("status.bindTo is required when status server is enabled")
	}

	if c.Stats.Prometheus.Enabled.Get(false) && c.Stats.Prometheus.BindTo.Get("") == "" {
		return fmt.Errorf("prometheus.bindTo is required when prometheus is enabled")
	}

	if c.Stats.StatsD.Enabled.Get(false) && c.Stats.StatsD.Address.Get("") == "" {
		return fmt.Errorf("statsd.address is required when statsd is enabled")
	}

	return nil
}

func (c *Config) String() string {
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)

	encoder.SetEscapeHTML(false)

	// TypeBotToken marshals itself masked.
	if err := encoder.Encode(c); err != nil {
		return "{}"
	}

	return buf.String()
}
