package message

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
)

// SegmentCount is a number of segments in every synthetic message.
const SegmentCount = 8

var (
	ErrInvalidSize = errors.New("message size must be positive and divisible by 8")
	ErrAllocation  = errors.New("cannot allocate message segment")
	ErrMutated     = errors.New("message contents were modified")
	ErrReleased    = errors.New("message is already released")
)

// Message is a synthetic payload of SegmentCount equal segments. Segment i
// is filled with Marker(i).
//
// Message is not safe for concurrent Release. Segments may be read
// concurrently (this is what the kernel does with zero-copy sends).
type Message struct {
	segments [SegmentCount][]byte
	alloc    Allocator
	digest   [32]byte
	released bool
}

// Marker returns a fill byte for the segment with a given index.
func Marker(index int) byte {
	return byte('A' + index)
}

// Build allocates and fills a new message of total bytes.
//
// Allocation is all-or-nothing: if any segment cannot be allocated, all
// segments allocated so far are returned to the allocator and an error
// wrapping ErrAllocation is returned.
func Build(total int, alloc Allocator) (*Message, error) {
	if total <= 0 || total%SegmentCount != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, total)
	}

	segmentSize := total / SegmentCount
	msg := &Message{
		alloc: alloc,
	}

	for i := range msg.segments {
		buf, err := alloc.Alloc(segmentSize)
		if err == nil && len(buf) != segmentSize {
			err = fmt.Errorf("allocator returned %d bytes instead of %d", len(buf), segmentSize)
			alloc.Free(buf) //nolint: errcheck
		}

		if err != nil {
			for j := 0; j < i; j++ {
				alloc.Free(msg.segments[j]) //nolint: errcheck
				msg.segments[j] = nil
			}

			return nil, fmt.Errorf("%w %d: %w", ErrAllocation, i, err)
		}

		fill(buf, Marker(i))
		msg.segments[i] = buf
	}

	msg.digest = msg.checksum()

	return msg, nil
}

// Segments returns message segments in their declared order. Returned
// slices share memory with the message.
func (m *Message) Segments() [][]byte {
	return m.segments[:]
}

// SegmentSize is a length of a single segment.
func (m *Message) SegmentSize() int {
	return len(m.segments[0])
}

// Size is a total length of the message.
func (m *Message) Size() int {
	return SegmentCount * m.SegmentSize()
}

// Verify checks that contents were not changed since Build.
func (m *Message) Verify() error {
	if m.released {
		return ErrReleased
	}

	if m.checksum() != m.digest {
		return ErrMutated
	}

	return nil
}

// Release returns all segments to the allocator. Message must not be used
// after that.
func (m *Message) Release() error {
	if m.released {
		return ErrReleased
	}

	m.released = true

	var errs []error

	for i, seg := range m.segments {
		if err := m.alloc.Free(seg); err != nil {
			errs = append(errs, fmt.Errorf("cannot free segment %d: %w", i, err))
		}

		m.segments[i] = nil
	}

	return errors.Join(errs...)
}

func (m *Message) checksum() [32]byte {
	hasher := blake3.New()

	for _, seg := range m.segments {
		hasher.Write(seg) //nolint: errcheck
	}

	var rv [32]byte

	copy(rv[:], hasher.Sum(nil))

	return rv
}

func fill(buf []byte, value byte) {
	if len(buf) == 0 {
		return
	}

	buf[0] = value

	// doubling copy is way faster than a byte loop for large segments
	for filled := 1; filled < len(buf); filled *= 2 {
		copy(buf[filled:], buf[:filled])
	}
}

// IsUniform reports if all bytes of buf are equal to value.
func IsUniform(buf []byte, value byte) bool {
	return bytes.Count(buf, []byte{value}) == len(buf)
}
