// Package strategy maps a segmented message onto socket send calls.
//
// Each strategy knows which memory it can send from (Allocator), how to put
// a message on the wire (Transmitter.Transmit) and when the message may be
// released after the last transmission (Transmitter.Settle). Copying and
// vectorized strategies are done with a buffer as soon as the call returns.
// Zero-copy one is not: the kernel keeps references to user pages until it
// reports a completion.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/akab00m/zcbench/sendlib/internal/message"
)

const (
	DefaultMaxInFlight    = 64
	DefaultPollTimeout    = 100 * time.Millisecond
	DefaultReleaseTimeout = 5 * time.Second
)

var (
	ErrUnknownKind       = errors.New("unknown strategy")
	ErrUnsupported       = errors.New("strategy is not supported on this platform")
	ErrCompletionBacklog = errors.New("zero-copy completion backlog is full")
)

// Kind identifies a transmission strategy.
type Kind uint8

const (
	KindCopy Kind = iota
	KindVector
	KindZeroCopy
)

func (k Kind) String() string {
	switch k {
	case KindCopy:
		return "copy"
	case KindVector:
		return "vector"
	case KindZeroCopy:
		return "zerocopy"
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the opposite of Kind.String. It is case-insensitive.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "copy":
		return KindCopy, nil
	case "vector":
		return KindVector, nil
	case "zerocopy", "zero-copy":
		return KindZeroCopy, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

// Result describes a single transmission.
type Result struct {
	// Bytes put into the socket.
	Bytes int64

	// Syscalls is a number of send calls which moved data. Calls which
	// ended with EAGAIN are not counted.
	Syscalls int

	// Completed and Copied are numbers of zero-copy completions observed
	// since the previous report.
	Completed uint64
	Copied    uint64
}

// Transmitter sends messages into one connection.
type Transmitter interface {
	// Transmit puts the whole message on the wire.
	Transmit(ctx context.Context, msg *message.Message) (Result, error)

	// Settle blocks until the kernel does not reference any message sent
	// through this transmitter. It has to be called while the socket is
	// still open. If it fails, messages must not be released.
	Settle() (Result, error)
}

// Strategy is a server-wide transmission mode.
type Strategy interface {
	Kind() Kind

	// Allocator returns an allocator for messages this strategy can send.
	Allocator() message.Allocator

	// Attach prepares a socket and returns a transmitter bound to it.
	Attach(conn syscall.RawConn) (Transmitter, error)
}

type Logger interface {
	WarningError(msg string, err error)
}

// ZeroCopyOptions tune completion handling of the zero-copy strategy.
type ZeroCopyOptions struct {
	// IgnoreCompletions stops reading completions while streaming. Sooner
	// or later sends fail with ErrCompletionBacklog.
	IgnoreCompletions bool

	// MaxInFlight is a number of sends which may wait for completions
	// before a transmitter stops and waits.
	MaxInFlight int

	// PollTimeout is a single wait for completions.
	PollTimeout time.Duration

	// ReleaseTimeout bounds Settle.
	ReleaseTimeout time.Duration
}

func (z ZeroCopyOptions) getMaxInFlight() int {
	if z.MaxInFlight <= 0 {
		return DefaultMaxInFlight
	}

	return z.MaxInFlight
}

func (z ZeroCopyOptions) getPollTimeout() time.Duration {
	if z.PollTimeout <= 0 {
		return DefaultPollTimeout
	}

	return z.PollTimeout
}

func (z ZeroCopyOptions) getReleaseTimeout() time.Duration {
	if z.ReleaseTimeout <= 0 {
		return DefaultReleaseTimeout
	}

	return z.ReleaseTimeout
}

// New returns a strategy of a given kind.
func New(kind Kind, logger Logger, opts ZeroCopyOptions) (Strategy, error) {
	switch kind {
	case KindCopy:
		return copyingStrategy{}, nil
	case KindVector:
		return vectorizedStrategy{}, nil
	case KindZeroCopy:
		return newZeroCopyStrategy(logger, opts)
	}

	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
}
