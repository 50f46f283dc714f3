//go:build linux

package strategy

import (
	"context"
	"fmt"
	"syscall"

	"github.com/akab00m/zcbench/sendlib/internal/message"
	"github.com/akab00m/zcbench/sendlib/internal/zerocopy"
	"golang.org/x/sys/unix"
)

// zeroCopyStrategy sends all segments with a single sendmsg(MSG_ZEROCOPY).
// Segments live in page-aligned anonymous mappings.
type zeroCopyStrategy struct {
	logger Logger
	opts   ZeroCopyOptions
}

func (z zeroCopyStrategy) Kind() Kind {
	return KindZeroCopy
}

func (z zeroCopyStrategy) Allocator() message.Allocator {
	return message.PageAllocator{}
}

func (z zeroCopyStrategy) Attach(conn syscall.RawConn) (Transmitter, error) {
	if err := setZeroCopy(conn); err != nil {
		// without SO_ZEROCOPY kernel silently ignores MSG_ZEROCOPY and
		// there is nothing to track
		z.logger.WarningError("zero-copy is not available, use plain sendmsg", err)

		return &vectorizedTransmitter{conn: conn}, nil
	}

	return &zeroCopyTransmitter{
		conn:    conn,
		tracker: zerocopy.NewTracker(zerocopy.NewSource(conn)),
		opts:    z.opts,
	}, nil
}

type zeroCopyTransmitter struct {
	conn     syscall.RawConn
	tracker  *zerocopy.Tracker
	opts     ZeroCopyOptions
	iov      [][]byte
	reported zerocopy.TrackerStats
}

func (z *zeroCopyTransmitter) Transmit(ctx context.Context, msg *message.Message) (Result, error) {
	if !z.opts.IgnoreCompletions {
		if err := z.waitWindow(ctx); err != nil {
			return z.report(Result{}), err
		}
	}

	res, err := sendVector(ctx, z.conn, &z.iov, msg, unix.MSG_ZEROCOPY, func() {
		z.tracker.Queued()
	})
	if err != nil {
		return z.report(res), err
	}

	if !z.opts.IgnoreCompletions {
		if _, err := z.tracker.Poll(0); err != nil {
			return z.report(res), err //nolint: wrapcheck
		}
	}

	return z.report(res), nil
}

func (z *zeroCopyTransmitter) Settle() (Result, error) {
	err := z.tracker.WaitAll(z.opts.getReleaseTimeout(), z.opts.getPollTimeout())
	res := z.report(Result{})

	if err != nil {
		return res, fmt.Errorf("cannot settle zero-copy sends: %w", err)
	}

	return res, nil
}

// waitWindow blocks while there are too many sends without completions.
func (z *zeroCopyTransmitter) waitWindow(ctx context.Context) error {
	limit := uint32(z.opts.getMaxInFlight())

	for z.tracker.Outstanding() >= limit {
		if err := ctx.Err(); err != nil {
			return err //nolint: wrapcheck
		}

		if _, err := z.tracker.Poll(z.opts.getPollTimeout()); err != nil {
			return err //nolint: wrapcheck
		}
	}

	return nil
}

func (z *zeroCopyTransmitter) report(res Result) Result {
	current := z.tracker.Stats()

	res.Completed = current.Completed - z.reported.Completed
	res.Copied = current.Copied - z.reported.Copied
	z.reported = current

	return res
}

func newZeroCopyStrategy(logger Logger, opts ZeroCopyOptions) (Strategy, error) {
	return zeroCopyStrategy{
		logger: logger,
		opts:   opts,
	}, nil
}
