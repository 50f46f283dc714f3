package sendlib

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/akab00m/zcbench/sendlib/internal/message"
	"github.com/akab00m/zcbench/sendlib/internal/strategy"
	"golang.org/x/time/rate"
)

const (
	// trafficFlushThreshold is a number of accumulated bytes which makes a
	// worker emit EventTraffic. Workers push gigabytes per second, a
	// smaller value floods the event stream.
	trafficFlushThreshold uint64 = 4 * 1024 * 1024

	streamIDLength = 16
)

// IsConnectionClosedError reports if error means that the peer has gone.
// This is a normal end of a stream.
func IsConnectionClosedError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.EOF) {
		return true
	}

	errStr := err.Error()

	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset by peer")
}

type worker struct {
	server    *Server
	ctx       context.Context
	ctxCancel context.CancelFunc
	eventCtx  context.Context
	conn      net.Conn
	streamID  string
	logger    Logger
	state     State

	traffic   uint64
	syscalls  uint64
	completed uint64
	copied    uint64
}

func (w *worker) run() {
	defer w.ctxCancel()

	w.server.eventStream.Send(w.eventCtx,
		NewEventStart(w.streamID, remoteIP(w.conn), w.server.strategy.Kind()))
	w.logger.Info("stream has been started")

	go func() {
		<-w.ctx.Done()
		// expired deadline wakes up a goroutine parked in netpoller
		w.conn.SetDeadline(time.Unix(1, 0)) //nolint: errcheck
	}()

	leaked, err := w.serve()

	w.setState(StateDone)

	switch {
	case w.ctx.Err() != nil:
		err = nil

		w.logger.Info("stream has been stopped")
	case errors.Is(err, ErrCompletionBacklog):
		w.logger.WarningError("zero-copy completions were not collected in time", err)
	case IsConnectionClosedError(err):
		w.logger.InfoError("connection has been closed by peer", err)
	default:
		w.logger.WarningError("stream has been aborted", err)
	}

	w.server.eventStream.Send(w.eventCtx, NewEventFinish(w.streamID, err, leaked))
}

func (w *worker) serve() (bool, error) {
	msg, err := message.Build(w.server.messageSize, w.server.allocator)
	if err != nil {
		w.server.eventStream.Send(w.eventCtx, NewEventBufferFailed(w.streamID, w.server.messageSize))
		w.conn.Close()

		return false, fmt.Errorf("cannot build a message: %w", err)
	}

	w.setState(StateBufferBuilt)

	tx, err := w.attach()
	if err == nil {
		w.setState(StateStreaming)

		err = w.stream(tx, msg)
	}

	w.setState(StateClosing)

	return w.closing(tx, msg), err
}

func (w *worker) attach() (strategy.Transmitter, error) {
	sysConn, ok := w.conn.(syscall.Conn)
	if !ok {
		return nil, ErrConnectionIsNotSocket
	}

	rawConn, err := sysConn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("cannot get underlying raw connection: %w", err)
	}

	tx, err := w.server.strategy.Attach(rawConn)
	if err != nil {
		return nil, fmt.Errorf("cannot prepare a socket: %w", err)
	}

	return tx, nil
}

func (w *worker) stream(tx strategy.Transmitter, msg *message.Message) error {
	limiter := rate.NewLimiter(w.server.rateLimit, w.server.rateBurst)
	size := msg.Size()

	for {
		if err := limiter.WaitN(w.ctx, size); err != nil {
			return fmt.Errorf("cannot wait for a rate limiter: %w", err)
		}

		res, err := tx.Transmit(w.ctx, msg)
		w.account(res)

		if err != nil {
			return err //nolint: wrapcheck
		}
	}
}

// closing returns true if a message is leaked.
func (w *worker) closing(tx strategy.Transmitter, msg *message.Message) bool {
	settled := true

	if tx != nil {
		res, err := tx.Settle()
		w.account(res)

		if err != nil {
			settled = false

			w.logger.WarningError("kernel still references a message, leak it", err)
		}
	}

	w.flush()
	w.conn.Close()

	if !settled {
		return true
	}

	if w.server.verifyOnRelease {
		if err := msg.Verify(); err != nil {
			w.logger.WarningError("message has been modified while streaming", err)
		}
	}

	if err := msg.Release(); err != nil {
		w.logger.WarningError("cannot release a message", err)
	}

	return false
}

func (w *worker) account(res strategy.Result) {
	w.traffic += uint64(res.Bytes)
	w.syscalls += uint64(res.Syscalls)
	w.completed += res.Completed
	w.copied += res.Copied

	if w.traffic >= trafficFlushThreshold {
		w.flush()
	}
}

func (w *worker) flush() {
	if w.traffic > 0 || w.syscalls > 0 {
		w.server.eventStream.Send(w.eventCtx, NewEventTraffic(w.streamID, uint(w.traffic), uint(w.syscalls)))
	}

	if w.completed > 0 {
		w.server.eventStream.Send(w.eventCtx, NewEventZeroCopy(w.streamID, w.completed, w.copied))
	}

	w.traffic = 0
	w.syscalls = 0
	w.completed = 0
	w.copied = 0
}

func (w *worker) setState(state State) {
	w.logger.BindStr("from", w.state.String()).BindStr("to", state.String()).Debug("state transition")
	w.state = state
}

func remoteIP(conn net.Conn) net.IP {
	if addr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		return addr.IP
	}

	return nil
}

func newStreamID() string {
	buf := make([]byte, streamIDLength)
	rand.Read(buf) //nolint: errcheck

	return base64.RawURLEncoding.EncodeToString(buf)
}

func newWorker(server *Server, conn net.Conn) *worker {
	ctx, cancel := context.WithCancel(server.ctx)
	streamID := newStreamID()

	return &worker{
		server:    server,
		ctx:       ctx,
		ctxCancel: cancel,
		eventCtx:  context.WithoutCancel(ctx),
		conn:      conn,
		streamID:  streamID,
		logger:    server.logger.Named("worker").BindStr("stream-id", streamID),
		state:     StateAccepted,
	}
}
