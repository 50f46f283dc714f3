// Package network contains socket plumbing of the benchmark: listeners
// with optional TCP Fast Open, a dialer for the receiving side and socket
// tuning for both ends of a stream.
package network

import (
	"context"
	"errors"
	"net"
	"time"
)

const (
	// DefaultTimeout is a default timeout for establishing a connection.
	DefaultTimeout = 10 * time.Second

	// DefaultTCPKeepAlivePeriod defines a time period between 2 consecutive
	// probes.
	DefaultTCPKeepAlivePeriod = 10 * time.Second

	// DefaultReceiveBufferSize is a size of the buffer the receiver reads
	// into.
	DefaultReceiveBufferSize = 256 * 1024
)

var ErrNotTCP = errors.New("connection is not TCP")

// Dialer establishes connections to a benchmark server.
type Dialer interface {
	Dial(network, address string) (net.Conn, error)
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}
