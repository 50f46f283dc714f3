// Package receiver reads a message stream and counts bytes. This is a
// client side of a benchmark: it does not care about contents unless it
// is asked to.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

const bitsInByte = 8

// Result is an outcome of a single measurement.
type Result struct {
	Bytes   uint64
	Elapsed time.Duration
}

// Throughput returns bits per second.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}

	return float64(r.Bytes*bitsInByte) / r.Elapsed.Seconds()
}

// Receive reads a connection until duration elapses, the peer closes the
// stream or ctx is done. Each received chunk is also written to sinks;
// a sink error stops reading.
//
// An expired duration and EOF are normal ends of measurement. A read
// error is returned together with bytes received so far.
func Receive(ctx context.Context, conn net.Conn, bufSize int, duration time.Duration,
	sinks ...io.Writer,
) (Result, error) {
	if bufSize <= 0 {
		return Result{}, fmt.Errorf("incorrect buffer size %d", bufSize)
	}

	started := time.Now()

	if err := conn.SetReadDeadline(started.Add(duration)); err != nil {
		return Result{}, fmt.Errorf("cannot set read deadline: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		conn.SetReadDeadline(time.Unix(1, 0)) //nolint: errcheck
	}()

	buf := make([]byte, bufSize)
	rv := Result{}

	for {
		n, err := conn.Read(buf)
		rv.Bytes += uint64(n)

		if n > 0 {
			for _, sink := range sinks {
				if _, sinkErr := sink.Write(buf[:n]); sinkErr != nil {
					rv.Elapsed = time.Since(started)

					return rv, fmt.Errorf("sink has rejected data: %w", sinkErr)
				}
			}
		}

		if err == nil {
			continue
		}

		rv.Elapsed = time.Since(started)

		switch {
		case ctx.Err() != nil:
			return rv, context.Cause(ctx) //nolint: wrapcheck
		case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, io.EOF):
			return rv, nil
		}

		return rv, fmt.Errorf("cannot read from connection: %w", err)
	}
}
