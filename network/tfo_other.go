//go:build !linux

package network

import (
	"errors"
	"net"
	"syscall"
)

const DefaultTFOQueueLen = 256

const (
	TFOModeDisabled     = 0
	TFOModeClientOnly   = 1
	TFOModeServerOnly   = 2
	TFOModeClientServer = 3
)

var ErrTFONotSupported = errors.New("TCP Fast Open is not supported on this platform")

func GetTFOMode() int {
	return TFOModeDisabled
}

func IsTFOSupported() bool {
	return false
}

func IsTFOServerEnabled() bool {
	return false
}

func IsTFOClientEnabled() bool {
	return false
}

type TFOConfig struct {
	Enabled  bool
	QueueLen int
	Fallback bool
}

func DefaultTFOConfig() TFOConfig {
	return TFOConfig{
		QueueLen: DefaultTFOQueueLen,
		Fallback: true,
	}
}

func ListenTFO(network, address string, config TFOConfig) (net.Listener, error) {
	if config.Enabled && !config.Fallback {
		return nil, ErrTFONotSupported
	}

	return net.Listen(network, address) //nolint: wrapcheck
}

func tfoDialControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
