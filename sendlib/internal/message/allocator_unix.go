//go:build unix

package message

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PageAllocator maps anonymous memory for each segment. Every allocation
// starts on a page boundary and spans whole pages, so the kernel can pin
// these pages for zero-copy sends instead of copying them.
//
// Memory is outside of Go heap and is never moved or reclaimed by GC. It
// lives until Free is called.
type PageAllocator struct{}

func (PageAllocator) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("incorrect allocation size %d", size)
	}

	pageSize := unix.Getpagesize()
	mapped := (size + pageSize - 1) / pageSize * pageSize

	buf, err := unix.Mmap(-1, 0, mapped,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("cannot mmap %d bytes: %w", mapped, err)
	}

	return buf[:size], nil
}

func (PageAllocator) Free(buf []byte) error {
	if cap(buf) == 0 {
		return nil
	}

	// munmap wants exactly the slice mmap gave us
	if err := unix.Munmap(buf[:cap(buf)]); err != nil {
		return fmt.Errorf("cannot munmap: %w", err)
	}

	return nil
}
