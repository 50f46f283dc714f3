//go:build linux

package strategy

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

func setZeroCopy(conn syscall.RawConn) error {
	var err error

	if ctrlErr := conn.Control(func(fd uintptr) {
		err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ZEROCOPY, 1) //nolint: nosnakecase
	}); ctrlErr != nil {
		return fmt.Errorf("cannot access socket: %w", ctrlErr)
	}

	if err != nil {
		return fmt.Errorf("cannot set SO_ZEROCOPY: %w", err)
	}

	return nil
}
