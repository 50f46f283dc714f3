package message

import "fmt"

// Allocator provides storage for message segments.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte) error
}

// HeapAllocator allocates segments on Go heap. Memory is reclaimed by GC,
// so Free does nothing.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("incorrect allocation size %d", size)
	}

	return make([]byte, size), nil
}

func (HeapAllocator) Free(_ []byte) error {
	return nil
}
