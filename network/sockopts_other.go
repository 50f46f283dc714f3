//go:build !linux

package network

import "net"

func SetTCPQuickACK(_ net.Conn) error {
	return nil
}

func SetTCPCork(_ net.Conn, _ bool) error {
	return nil
}
