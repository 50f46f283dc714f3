//go:build !linux

package zerocopy

import (
	"syscall"
	"time"
)

type unsupportedSource struct{}

func (unsupportedSource) ReadCompletions(_ time.Duration) ([]Range, error) {
	return nil, ErrUnsupported
}

// NewSource returns a source which always fails: there is no MSG_ZEROCOPY
// outside of Linux.
func NewSource(_ syscall.RawConn) Source {
	return unsupportedSource{}
}
