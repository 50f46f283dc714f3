//go:build linux

package zerocopy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const (
	// values from linux/errqueue.h
	soEEOriginZeroCopy     = 5
	soEECodeZeroCopyCopied = 1

	// struct sock_extended_err: errno u32, origin u8, type u8, code u8,
	// pad u8, info u32, data u32
	sizeofSockExtendedErr = 16
)

type errQueueSource struct {
	conn syscall.RawConn
	oob  []byte
}

// ReadCompletions drains MSG_ERRQUEUE of the socket. If the queue is empty
// and timeout is positive, it waits for POLLERR up to timeout.
//
// This does not go through Go netpoller: the error queue readiness is not
// something it can wait for, so we poll(2) the descriptor directly.
func (e *errQueueSource) ReadCompletions(timeout time.Duration) ([]Range, error) {
	ranges, err := e.drain()
	if err != nil || len(ranges) > 0 || timeout <= 0 {
		return ranges, err
	}

	if err := e.wait(timeout); err != nil {
		return nil, err
	}

	return e.drain()
}

func (e *errQueueSource) drain() ([]Range, error) {
	var (
		ranges []Range
		opErr  error
	)

	err := e.conn.Control(func(fd uintptr) {
		for {
			_, oobn, _, _, err := unix.Recvmsg(int(fd), nil, e.oob, unix.MSG_ERRQUEUE)

			switch {
			case errors.Is(err, unix.EINTR):
				continue
			case errors.Is(err, unix.EAGAIN):
				return
			case err != nil:
				opErr = fmt.Errorf("cannot recvmsg from error queue: %w", err)

				return
			}

			parsed, err := parseCompletions(e.oob[:oobn])
			if err != nil {
				opErr = err

				return
			}

			ranges = append(ranges, parsed...)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("cannot access socket: %w", err)
	}

	return ranges, opErr
}

func (e *errQueueSource) wait(timeout time.Duration) error {
	var opErr error

	err := e.conn.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd)}}

		// POLLERR is always reported, no need to ask for it
		for {
			_, err := unix.Poll(fds, int(timeout.Milliseconds()))
			if !errors.Is(err, unix.EINTR) {
				opErr = err

				return
			}
		}
	})
	if err != nil {
		return fmt.Errorf("cannot access socket: %w", err)
	}

	if opErr != nil {
		return fmt.Errorf("cannot poll socket: %w", opErr)
	}

	return nil
}

func parseCompletions(oob []byte) ([]Range, error) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("cannot parse control message: %w", err)
	}

	var ranges []Range

	for _, msg := range msgs {
		isIPv4 := msg.Header.Level == unix.SOL_IP && msg.Header.Type == unix.IP_RECVERR
		isIPv6 := msg.Header.Level == unix.SOL_IPV6 && msg.Header.Type == unix.IPV6_RECVERR

		if !isIPv4 && !isIPv6 {
			continue
		}

		if len(msg.Data) < sizeofSockExtendedErr {
			return nil, fmt.Errorf("short sock_extended_err: %d bytes", len(msg.Data))
		}

		data := msg.Data
		errno := binary.NativeEndian.Uint32(data[0:4])
		origin := data[4]
		code := data[6]

		if origin != soEEOriginZeroCopy || errno != 0 {
			continue
		}

		ranges = append(ranges, Range{
			Lo:     binary.NativeEndian.Uint32(data[8:12]),
			Hi:     binary.NativeEndian.Uint32(data[12:16]),
			Copied: code&soEECodeZeroCopyCopied != 0,
		})
	}

	return ranges, nil
}

// NewSource builds a completion source which reads the socket error queue.
func NewSource(conn syscall.RawConn) Source {
	return &errQueueSource{
		conn: conn,
		oob:  make([]byte, unix.CmsgSpace(sizeofSockExtendedErr)+unix.CmsgSpace(64)),
	}
}
