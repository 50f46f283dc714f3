package cli

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/akab00m/zcbench/internal/utils"
)

const healthCheckTimeout = 5 * time.Second

var ErrHealthCheckIsNotAvailable = errors.New("health check requires prometheus endpoint")

// Health checks a running server by its Prometheus endpoint: 200 OK is
// expected.
//
// The server port itself is never touched: every accepted connection counts
// towards a connection target.
type Health struct {
	ConfigPath string `kong:"arg,required,type='existingfile',help='Path to config file.',name='config-path'"` //nolint: lll
}

func (h *Health) Run(cli *CLI, version string) error {
	conf, err := utils.ReadConfig(h.ConfigPath)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	if !conf.Stats.Prometheus.Enabled.Get(false) {
		return ErrHealthCheckIsNotAvailable
	}

	url := fmt.Sprintf("http://%s%s",
		net.JoinHostPort("127.0.0.1", strconv.Itoa(int(conf.Stats.Prometheus.BindTo.Port))),
		conf.Stats.Prometheus.HTTPPath.Get("/"))

	return checkHTTP(url)
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
