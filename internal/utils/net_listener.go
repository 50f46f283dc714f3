package utils

import (
	"fmt"
	"net"

	"github.com/akab00m/zcbench/network"
)

// Listener tunes every accepted socket for streaming.
type Listener struct {
	net.Listener

	sendBufferSize int
	cork           bool
	tfoEnabled     bool
}

func (l Listener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	if err := network.SetServerSocketOptions(conn, l.sendBufferSize); err != nil {
		conn.Close()

		return nil, fmt.Errorf("cannot set TCP options: %w", err)
	}

	if l.cork {
		if err := network.SetTCPCork(conn, true); err != nil {
			conn.Close()

			return nil, fmt.Errorf("cannot cork a socket: %w", err)
		}
	}

	return conn, nil
}

// IsTFOEnabled reports if the listener was created with TCP Fast Open.
func (l Listener) IsTFOEnabled() bool {
	return l.tfoEnabled
}

// NewListener creates a TCP listener. If enableTFO is set, TCP Fast Open is
// enabled when the kernel allows it; otherwise a plain listener is used.
// If cork is set, accepted sockets get TCP_CORK.
func NewListener(bindTo string, sendBufferSize int, enableTFO, cork bool) (Listener, error) {
	base, err := network.ListenTFO("tcp", bindTo, network.TFOConfig{
		Enabled:  enableTFO,
		QueueLen: network.DefaultTFOQueueLen,
		Fallback: true,
	})
	if err != nil {
		return Listener{}, fmt.Errorf("cannot build a base listener: %w", err)
	}

	return Listener{
		Listener:       base,
		sendBufferSize: sendBufferSize,
		cork:           cork,
		tfoEnabled:     enableTFO && network.IsTFOServerEnabled(),
	}, nil
}
