package testlib

import "github.com/stretchr/testify/mock"

type AllocatorMock struct {
	mock.Mock
}

func (m *AllocatorMock) Alloc(size int) ([]byte, error) {
	args := m.Called(size)

	if buf := args.Get(0); buf != nil {
		return buf.([]byte), args.Error(1) //nolint: forcetypeassert
	}

	return nil, args.Error(1) //nolint: wrapcheck
}

func (m *AllocatorMock) Free(buf []byte) error {
	return m.Called(buf).Error(0) //nolint: wrapcheck
}
