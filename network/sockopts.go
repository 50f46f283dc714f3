package network

import (
	"fmt"
	"net"
)

// SetServerSocketOptions tunes an accepted TCP socket which the benchmark
// writes messages into.
//
// If sendBufferSize is positive, SO_SNDBUF is set to this value. Otherwise a
// kernel autotuning stays in charge.
func SetServerSocketOptions(conn net.Conn, sendBufferSize int) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return ErrNotTCP
	}

	if err := setCommonSocketOptions(tcpConn); err != nil {
		return err
	}

	if sendBufferSize <= 0 {
		return nil
	}

	if err := tcpConn.SetWriteBuffer(sendBufferSize); err != nil {
		return fmt.Errorf("cannot set SO_SNDBUF to %d: %w", sendBufferSize, err)
	}

	return nil
}

// SetClientSocketOptions tunes a TCP socket of the receiver.
func SetClientSocketOptions(conn net.Conn, receiveBufferSize int) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return ErrNotTCP
	}

	if err := setCommonSocketOptions(tcpConn); err != nil {
		return err
	}

	if receiveBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(receiveBufferSize); err != nil {
			return fmt.Errorf("cannot set SO_RCVBUF to %d: %w", receiveBufferSize, err)
		}
	}

	return SetTCPQuickACK(conn)
}

func setCommonSocketOptions(conn *net.TCPConn) error {
	if err := conn.SetNoDelay(true); err != nil {
		return fmt.Errorf("cannot set TCP_NODELAY: %w", err)
	}

	if err := conn.SetKeepAlive(true); err != nil {
		return fmt.Errorf("cannot enable TCP keepalive: %w", err)
	}

	if err := conn.SetKeepAlivePeriod(DefaultTCPKeepAlivePeriod); err != nil {
		return fmt.Errorf("cannot set time period of TCP keepalive probes: %w", err)
	}

	return nil
}
