package testlib

import (
	"context"

	"github.com/akab00m/zcbench/sendlib"
	"github.com/stretchr/testify/mock"
)

type EventStreamMock struct {
	mock.Mock
}

func (m *EventStreamMock) Send(ctx context.Context, evt sendlib.Event) {
	m.Called(ctx, evt)
}
