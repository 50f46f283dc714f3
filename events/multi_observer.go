package events

import (
	"sync"

	"github.com/akab00m/zcbench/sendlib"
)

type multiObserver struct {
	observers []Observer
}

func (m multiObserver) EventStart(evt sendlib.EventStart) {
	m.fanout(func(o Observer) { o.EventStart(evt) })
}

func (m multiObserver) EventTraffic(evt sendlib.EventTraffic) {
	m.fanout(func(o Observer) { o.EventTraffic(evt) })
}

func (m multiObserver) EventZeroCopy(evt sendlib.EventZeroCopy) {
	m.fanout(func(o Observer) { o.EventZeroCopy(evt) })
}

func (m multiObserver) EventBufferFailed(evt sendlib.EventBufferFailed) {
	m.fanout(func(o Observer) { o.EventBufferFailed(evt) })
}

func (m multiObserver) EventFinish(evt sendlib.EventFinish) {
	m.fanout(func(o Observer) { o.EventFinish(evt) })
}

func (m multiObserver) EventConcurrencyLimited(evt sendlib.EventConcurrencyLimited) {
	m.fanout(func(o Observer) { o.EventConcurrencyLimited(evt) })
}

func (m multiObserver) Shutdown() {
	for _, v := range m.observers {
		v.Shutdown()
	}
}

func (m multiObserver) fanout(callback func(Observer)) {
	wg := &sync.WaitGroup{}
	wg.Add(len(m.observers))

	for _, v := range m.observers {
		go func(obs Observer) {
			defer wg.Done()

			callback(obs)
		}(v)
	}

	wg.Wait()
}

func newMultiObserver(observers []ObserverFactory) Observer {
	rv := multiObserver{
		observers: make([]Observer, len(observers)),
	}

	for i, v := range observers {
		rv.observers[i] = v()
	}

	return rv
}
