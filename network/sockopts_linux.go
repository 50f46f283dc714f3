//go:build linux

package network

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// SetTCPQuickACK asks the kernel to send ACKs immediately. This keeps a
// sender window open when the receiver is the bottleneck.
//
// TCP_QUICKACK is not sticky: the kernel may switch back to delayed ACKs.
func SetTCPQuickACK(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return fmt.Errorf("cannot get raw conn for TCP_QUICKACK: %w", err)
	}

	var sysErr error

	err = rawConn.Control(func(fd uintptr) {
		sysErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_QUICKACK, 1)
	})
	if err != nil {
		return fmt.Errorf("cannot access socket: %w", err)
	}

	if sysErr != nil {
		return fmt.Errorf("cannot set TCP_QUICKACK: %w", sysErr)
	}

	return nil
}

// SetTCPCork makes the kernel hold partial frames until cork is removed or
// a frame is full. It overrides TCP_NODELAY while set.
func SetTCPCork(conn net.Conn, cork bool) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return fmt.Errorf("cannot get raw conn for TCP_CORK: %w", err)
	}

	value := 0
	if cork {
		value = 1
	}

	var sysErr error

	err = rawConn.Control(func(fd uintptr) {
		sysErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_CORK, value)
	})
	if err != nil {
		return fmt.Errorf("cannot access socket: %w", err)
	}

	if sysErr != nil {
		return fmt.Errorf("cannot set TCP_CORK=%d: %w", value, sysErr)
	}

	return nil
}
