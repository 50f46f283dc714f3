//go:build linux

package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

const (
	// DefaultTFOQueueLen is a length of the queue of pending TFO
	// connections on a listener.
	DefaultTFOQueueLen = 256

	// tcpFastOpenConnect is TCP_FASTOPEN_CONNECT from linux/tcp.h.
	tcpFastOpenConnect = 30
)

// Modes of net.ipv4.tcp_fastopen.
const (
	TFOModeDisabled     = 0
	TFOModeClientOnly   = 1
	TFOModeServerOnly   = 2
	TFOModeClientServer = 3
)

var (
	tfoModeOnce sync.Once
	tfoMode     int

	ErrTFONotSupported = errors.New("TCP Fast Open is not supported by kernel")
)

// GetTFOMode returns TFO mode of the kernel. The value is read once.
func GetTFOMode() int {
	tfoModeOnce.Do(func() {
		tfoMode = readTFOMode("/proc/sys/net/ipv4/tcp_fastopen")
	})

	return tfoMode
}

// IsTFOSupported reports if TFO is enabled in any direction.
func IsTFOSupported() bool {
	return GetTFOMode() > TFOModeDisabled
}

// IsTFOServerEnabled reports if listeners may accept TFO connections.
func IsTFOServerEnabled() bool {
	mode := GetTFOMode()

	return mode == TFOModeServerOnly || mode == TFOModeClientServer
}

// IsTFOClientEnabled reports if outgoing connections may use TFO.
func IsTFOClientEnabled() bool {
	mode := GetTFOMode()

	return mode == TFOModeClientOnly || mode == TFOModeClientServer
}

func readTFOMode(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return TFOModeDisabled
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return TFOModeDisabled
	}

	return value & TFOModeClientServer
}

// TFOConfig is a configuration of TCP Fast Open on a listener.
type TFOConfig struct {
	Enabled bool

	// QueueLen is a queue length of pending TFO connections. Zero means
	// DefaultTFOQueueLen.
	QueueLen int

	// Fallback allows to get a plain listener if TFO cannot be enabled.
	Fallback bool
}

// DefaultTFOConfig returns a configuration with TFO enabled where
// possible.
func DefaultTFOConfig() TFOConfig {
	return TFOConfig{
		Enabled:  true,
		QueueLen: DefaultTFOQueueLen,
		Fallback: true,
	}
}

// ListenTFO creates a TCP listener with TCP_FASTOPEN. If the kernel does not
// support it and config allows a fallback, a plain listener is returned.
func ListenTFO(network, address string, config TFOConfig) (net.Listener, error) {
	if !config.Enabled {
		return net.Listen(network, address) //nolint: wrapcheck
	}

	if !IsTFOServerEnabled() {
		if config.Fallback {
			return net.Listen(network, address) //nolint: wrapcheck
		}

		return nil, ErrTFONotSupported
	}

	queueLen := config.QueueLen
	if queueLen <= 0 {
		queueLen = DefaultTFOQueueLen
	}

	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var opErr error

			if err := c.Control(func(fd uintptr) {
				opErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_FASTOPEN, queueLen)
			}); err != nil {
				return err //nolint: wrapcheck
			}

			if opErr != nil && !config.Fallback {
				return fmt.Errorf("cannot enable TCP_FASTOPEN: %w", opErr)
			}

			return nil
		},
	}

	return lc.Listen(context.Background(), network, address) //nolint: wrapcheck
}

func tfoDialControl(_, _ string, c syscall.RawConn) error {
	// best effort: a plain handshake is fine too
	return c.Control(func(fd uintptr) { //nolint: wrapcheck
		unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, tcpFastOpenConnect, 1) //nolint: errcheck
	})
}
