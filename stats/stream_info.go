package stats

import (
	"sync"
	"time"

	"github.com/akab00m/zcbench/sendlib"
	statsd "github.com/smira/go-statsd"
)

type streamInfo struct {
	bufferFailed bool
	startTime    time.Time
	tags         map[string]string
}

func (s streamInfo) T(key string) statsd.Tag {
	return statsd.StringTag(key, s.tags[key])
}

func (s *streamInfo) Reset() {
	s.bufferFailed = false
	s.startTime = time.Time{}

	for k := range s.tags {
		delete(s.tags, k)
	}
}

func (s *streamInfo) fill(evt sendlib.EventStart) {
	s.startTime = evt.Timestamp()
	s.tags[TagStrategy] = evt.Strategy.String()

	if evt.RemoteIP.To4() != nil {
		s.tags[TagIPFamily] = TagIPFamilyIPv4
	} else {
		s.tags[TagIPFamily] = TagIPFamilyIPv6
	}
}

var streamInfoPool = sync.Pool{
	New: func() interface{} {
		return &streamInfo{
			tags: make(map[string]string),
		}
	},
}

func acquireStreamInfo() *streamInfo {
	return streamInfoPool.Get().(*streamInfo) //nolint: forcetypeassert
}

func releaseStreamInfo(info *streamInfo) {
	info.Reset()
	streamInfoPool.Put(info)
}
