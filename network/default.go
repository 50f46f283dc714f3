package network

import (
	"context"
	"fmt"
	"net"
	"time"
)

type defaultDialer struct {
	net.Dialer

	receiveBufferSize int
}

func (d *defaultDialer) Dial(network, address string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, address)
}

func (d *defaultDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	switch network {
	case "tcp", "tcp4", "tcp6": //nolint: goconst
	default:
		return nil, fmt.Errorf("unsupported network %s", network)
	}

	conn, err := d.Dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("cannot dial to %s: %w", address, err)
	}

	if err := SetClientSocketOptions(conn, d.receiveBufferSize); err != nil {
		conn.Close()

		return nil, fmt.Errorf("cannot set socket options: %w", err)
	}

	return conn, nil
}

// NewDefaultDialer builds a dialer for the receiving side of a benchmark.
//
// receiveBufferSize sets SO_RCVBUF if positive. If enableTFO is set and the
// kernel allows it, connections are opened with TCP_FASTOPEN_CONNECT.
func NewDefaultDialer(timeout time.Duration, receiveBufferSize int, enableTFO bool) (Dialer, error) {
	switch {
	case timeout < 0:
		return nil, fmt.Errorf("timeout %v should be positive number", timeout)
	case timeout == 0:
		timeout = DefaultTimeout
	}

	dialer := &defaultDialer{
		Dialer: net.Dialer{
			Timeout: timeout,
		},
		receiveBufferSize: receiveBufferSize,
	}

	if enableTFO && IsTFOClientEnabled() {
		dialer.Control = tfoDialControl
	}

	return dialer, nil
}
