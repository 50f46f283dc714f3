package strategy

import (
	"context"
	"fmt"
	"io"
	"syscall"

	"github.com/akab00m/zcbench/sendlib/internal/message"
	"golang.org/x/sys/unix"
)

// vectorizedStrategy sends all segments with a single sendmsg call.
type vectorizedStrategy struct{}

func (vectorizedStrategy) Kind() Kind {
	return KindVector
}

func (vectorizedStrategy) Allocator() message.Allocator {
	return message.HeapAllocator{}
}

func (vectorizedStrategy) Attach(conn syscall.RawConn) (Transmitter, error) {
	return &vectorizedTransmitter{conn: conn}, nil
}

type vectorizedTransmitter struct {
	conn syscall.RawConn
	iov  [][]byte
}

func (v *vectorizedTransmitter) Transmit(ctx context.Context, msg *message.Message) (Result, error) {
	return sendVector(ctx, v.conn, &v.iov, msg, 0, nil)
}

func (v *vectorizedTransmitter) Settle() (Result, error) {
	return Result{}, nil
}

// sendVector sends a message with sendmsg until every byte is written.
// If set, onSent is called after each successful call.
func sendVector(ctx context.Context, conn syscall.RawConn, iov *[][]byte,
	msg *message.Message, flags int, onSent func(),
) (Result, error) {
	res := Result{}
	*iov = append((*iov)[:0], msg.Segments()...)
	pending := *iov

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err //nolint: wrapcheck
		}

		n, err := writeRaw(conn, func(fd int) (int, error) {
			return unix.SendmsgBuffers(fd, pending, nil, nil, flags)
		})
		if err != nil {
			return res, wrapSendError(err)
		}

		if n <= 0 {
			return res, fmt.Errorf("sendmsg: %w", io.ErrShortWrite)
		}

		if onSent != nil {
			onSent()
		}

		res.Bytes += int64(n)
		res.Syscalls++
		pending = consume(pending, n)
	}

	return res, nil
}
