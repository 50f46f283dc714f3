// Package zerocopy tracks completion notifications of MSG_ZEROCOPY sends.
//
// Linux assigns every successful zero-copy send on a socket a 32-bit
// sequence number, starting from 0. When the kernel releases the user pages
// of a range of sends, it puts a notification with [lo, hi] into the socket
// error queue. Ranges can be coalesced and can arrive out of order. A buffer
// passed to send N may be reused only after N is retired.
//
// The queue is bounded by the socket option memory limit: if nobody reads
// it, zero-copy sends start to fail with ENOBUFS.
package zerocopy

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrCompletionTimeout = errors.New("timeout waiting for zero-copy completions")
	ErrUnsupported       = errors.New("zero-copy completions are not supported on this platform")
)

// Range is a single completion record: sends from Lo to Hi (inclusive) are
// done with their buffers.
type Range struct {
	Lo uint32
	Hi uint32

	// Copied is set when the kernel decided to copy data instead of
	// referencing user pages (loopback does this, for example).
	Copied bool
}

// Len is a number of sends covered by this range.
func (r Range) Len() uint32 {
	return r.Hi - r.Lo + 1
}

func (r Range) contains(seq uint32) bool {
	return int32(seq-r.Lo) >= 0 && int32(r.Hi-seq) >= 0
}

// Source delivers completion records. A zero timeout means non-blocking
// read. Implementations return (nil, nil) if nothing arrived in time.
type Source interface {
	ReadCompletions(timeout time.Duration) ([]Range, error)
}

// TrackerStats is a snapshot of tracker counters.
type TrackerStats struct {
	Queued    uint64
	Completed uint64
	Copied    uint64
}

// Tracker matches queued sends against completion records and maintains a
// watermark: the lowest sequence number which is not retired yet.
type Tracker struct {
	mutex sync.Mutex
	src   Source

	next      uint32
	watermark uint32
	pending   []Range

	stats TrackerStats
}

// Queued registers one zero-copy send accepted by the kernel and returns
// its sequence number.
func (t *Tracker) Queued() uint32 {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	seq := t.next
	t.next++
	t.stats.Queued++

	return seq
}

// Outstanding is a number of queued sends which are not retired yet.
func (t *Tracker) Outstanding() uint32 {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return t.next - t.watermark
}

// Retired reports if the kernel does not reference a buffer of the send seq
// anymore.
func (t *Tracker) Retired(seq uint32) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if int32(seq-t.next) >= 0 {
		return false
	}

	return int32(seq-t.watermark) < 0
}

// Stats returns a snapshot of counters.
func (t *Tracker) Stats() TrackerStats {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return t.stats
}

// Poll reads available completion records and applies them.
func (t *Tracker) Poll(timeout time.Duration) ([]Range, error) {
	ranges, err := t.src.ReadCompletions(timeout)
	if len(ranges) > 0 {
		t.mutex.Lock()

		for _, r := range ranges {
			t.apply(r)
		}

		t.mutex.Unlock()
	}

	if err != nil {
		return ranges, fmt.Errorf("cannot read completions: %w", err)
	}

	return ranges, nil
}

// WaitAll polls until every queued send is retired.
func (t *Tracker) WaitAll(timeout, pollInterval time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		outstanding := t.Outstanding()
		if outstanding == 0 {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w: %d sends are in flight", ErrCompletionTimeout, outstanding)
		}

		if _, err := t.Poll(min(pollInterval, remaining)); err != nil {
			return err
		}
	}
}

func (t *Tracker) apply(r Range) {
	if int32(r.Hi-t.watermark) < 0 {
		return
	}

	t.stats.Completed += uint64(r.Len())

	if r.Copied {
		t.stats.Copied += uint64(r.Len())
	}

	t.pending = append(t.pending, r)

	for advanced := true; advanced; {
		advanced = false
		kept := t.pending[:0]

		for _, p := range t.pending {
			switch {
			case p.contains(t.watermark):
				t.watermark = p.Hi + 1
				advanced = true
			case int32(p.Hi-t.watermark) < 0:
				// duplicate or already covered range
			default:
				kept = append(kept, p)
			}
		}

		t.pending = kept
	}
}

// NewTracker builds a tracker for a fresh socket: the first queued send
// gets sequence number 0.
func NewTracker(src Source) *Tracker {
	return &Tracker{
		src: src,
	}
}
