package cli

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/akab00m/dupclean/internal/utils"
	"github.com/fatih/color"
)

// healthCheckTimeout is how long a health check waits for a response.
const healthCheckTimeout = 5 * time.Second

// Health checks a running bot through its status server or, if it is
// disabled, through a Prometheus endpoint. It is used as a container
// HEALTHCHECK.
type Health struct {
	ConfigPath string `kong:"arg,required,type='existingfile',help='Path to config file.',name='config-path'"` //nolint: lll
}

func (h Health) Run(cli *CLI, version string) error {
	conf, err := utils.ReadConfig(h.ConfigPath)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	var url string

	switch {
	case conf.Status.Enabled.Get(false):
		url = localURL(conf.Status.BindTo.Get(""), "/health")
	case conf.Stats.Prometheus.Enabled.Get(false):
		url = localURL(conf.Stats.Prometheus.BindTo.Get(""),
			conf.Stats.Prometheus.HTTPPath.Get("/metrics"))
	default:
		return fmt.Errorf("neither status server nor prometheus is enabled")
	}

	if err := checkHTTP(url); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "unhealthy: %v\n", err) //nolint: errcheck

		return err
	}

	color.New(color.FgGreen).Fprintf(os.Stdout, "healthy: %s\n", url) //nolint: errcheck

	return nil
}

// localURL points to localhost: a bot usually listens on 0.0.0.0.
func localURL(bindTo, path string) string {
	_, port, err := net.SplitHostPort(bindTo)
	if err != nil || port == "" {
		port = "80"
	}

	return fmt.Sprintf("http://127.0.0.1:%s%s", port, path)
}

func checkHTTP(url string) error {
	client := &http.Client{
		Timeout: healthCheckTimeout,
	}

	resp, err := client.Get(url) //nolint: noctx
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body) //nolint: errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}

	return nil
}
