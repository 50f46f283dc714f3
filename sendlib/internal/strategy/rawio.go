package strategy

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// writeRaw runs a single send call on a socket. EAGAIN parks the goroutine
// in the netpoller until the socket is writable again, so the caller sees
// blocking semantics. Deadlines set on the connection interrupt the wait.
func writeRaw(conn syscall.RawConn, send func(fd int) (int, error)) (int, error) {
	var (
		n       int
		sendErr error
	)

	err := conn.Write(func(fd uintptr) bool {
		for {
			n, sendErr = send(int(fd))

			switch {
			case errors.Is(sendErr, unix.EINTR):
				continue
			case errors.Is(sendErr, unix.EAGAIN):
				return false
			}

			return true
		}
	})
	if err != nil {
		return 0, err
	}

	return n, sendErr
}

func wrapSendError(err error) error {
	if errors.Is(err, unix.ENOBUFS) {
		return fmt.Errorf("%w: %w", ErrCompletionBacklog, err)
	}

	return fmt.Errorf("cannot send: %w", err)
}

// consume drops n leading bytes from bufs.
func consume(bufs [][]byte, n int) [][]byte {
	for len(bufs) > 0 && n > 0 {
		if n < len(bufs[0]) {
			bufs[0] = bufs[0][n:]

			return bufs
		}

		n -= len(bufs[0])
		bufs = bufs[1:]
	}

	return bufs
}
