package events_test

import (
	"github.com/akab00m/zcbench/sendlib"
	"github.com/stretchr/testify/mock"
)

type ObserverMock struct {
	mock.Mock
}

func (o *ObserverMock) EventStart(evt sendlib.EventStart) {
	o.Called(evt)
}

func (o *ObserverMock) EventTraffic(evt sendlib.EventTraffic) {
	o.Called(evt)
}

func (o *ObserverMock) EventZeroCopy(evt sendlib.EventZeroCopy) {
	o.Called(evt)
}

func (o *ObserverMock) EventBufferFailed(evt sendlib.EventBufferFailed) {
	o.Called(evt)
}

func (o *ObserverMock) EventFinish(evt sendlib.EventFinish) {
	o.Called(evt)
}

func (o *ObserverMock) EventConcurrencyLimited(evt sendlib.EventConcurrencyLimited) {
	o.Called(evt)
}

func (o *ObserverMock) Shutdown() {
	o.Called()
}
