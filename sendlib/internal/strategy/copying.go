package strategy

import (
	"context"
	"fmt"
	"io"
	"syscall"

	"github.com/akab00m/zcbench/sendlib/internal/message"
	"golang.org/x/sys/unix"
)

// copyingStrategy issues a separate write for every segment.
type copyingStrategy struct{}

func (copyingStrategy) Kind() Kind {
	return KindCopy
}

func (copyingStrategy) Allocator() message.Allocator {
	return message.HeapAllocator{}
}

func (copyingStrategy) Attach(conn syscall.RawConn) (Transmitter, error) {
	return &copyingTransmitter{conn: conn}, nil
}

type copyingTransmitter struct {
	conn syscall.RawConn
}

func (c *copyingTransmitter) Transmit(ctx context.Context, msg *message.Message) (Result, error) {
	res := Result{}

	for i, seg := range msg.Segments() {
		for len(seg) > 0 {
			if err := ctx.Err(); err != nil {
				return res, err //nolint: wrapcheck
			}

			n, err := writeRaw(c.conn, func(fd int) (int, error) {
				return unix.Write(fd, seg)
			})
			if err != nil {
				return res, fmt.Errorf("segment %d: %w", i, wrapSendError(err))
			}

			if n <= 0 {
				return res, fmt.Errorf("segment %d: %w", i, io.ErrShortWrite)
			}

			res.Bytes += int64(n)
			res.Syscalls++
			seg = seg[n:]
		}
	}

	return res, nil
}

func (c *copyingTransmitter) Settle() (Result, error) {
	return Result{}, nil
}
