package receiver

import (
	"errors"
	"fmt"

	"github.com/akab00m/zcbench/sendlib"
)

var ErrPatternMismatch = errors.New("stream does not match message pattern")

// Verifier checks that a stream is a sequence of messages where segment i
// is filled with sendlib.SegmentMarker(i).
type Verifier struct {
	messageSize int
	segmentSize int
	offset      int
	total       uint64
}

// Write checks the next chunk of a stream. It returns a number of bytes
// which match the pattern.
func (v *Verifier) Write(p []byte) (int, error) {
	written := 0

	for len(p) > 0 {
		segment := v.offset / v.segmentSize
		chunk := p[:min(len(p), v.segmentSize-v.offset%v.segmentSize)]
		marker := sendlib.SegmentMarker(segment)

		for i, b := range chunk {
			if b != marker {
				return written + i, fmt.Errorf("%w: byte %d is %q, expected %q",
					ErrPatternMismatch, v.total+uint64(i), b, marker)
			}
		}

		v.offset = (v.offset + len(chunk)) % v.messageSize
		v.total += uint64(len(chunk))
		written += len(chunk)
		p = p[len(chunk):]
	}

	return written, nil
}

// Verified is a number of bytes checked so far.
func (v *Verifier) Verified() uint64 {
	return v.total
}

// NewVerifier returns a verifier for messages of a given size.
func NewVerifier(messageSize int) (*Verifier, error) {
	if messageSize <= 0 || messageSize%sendlib.SegmentCount != 0 {
		return nil, fmt.Errorf("%w: %d", sendlib.ErrMessageSizeInvalid, messageSize)
	}

	return &Verifier{
		messageSize: messageSize,
		segmentSize: messageSize / sendlib.SegmentCount,
	}, nil
}
