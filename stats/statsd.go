package stats

import (
	"fmt"
	"strings"

	"github.com/akab00m/zcbench/events"
	"github.com/akab00m/zcbench/sendlib"
	statsd "github.com/smira/go-statsd"
)

type statsdProcessor struct {
	streams map[string]*streamInfo
	client  *statsd.Client
}

func (s statsdProcessor) strategyTag(streamID string) statsd.Tag {
	if info, ok := s.streams[streamID]; ok {
		return info.T(TagStrategy)
	}

	return statsd.StringTag(TagStrategy, unknownStrategy)
}

func (s statsdProcessor) EventStart(evt sendlib.EventStart) {
	info := acquireStreamInfo()
	info.fill(evt)

	s.streams[evt.StreamID()] = info

	s.client.GaugeDelta(MetricActiveConnections, 1, info.T(TagStrategy), info.T(TagIPFamily))
}

func (s statsdProcessor) EventTraffic(evt sendlib.EventTraffic) {
	tag := s.strategyTag(evt.StreamID())

	s.client.Incr(MetricBytesSent, int64(evt.Traffic), tag)
	s.client.Incr(MetricSendSyscalls, int64(evt.Syscalls), tag)
}

func (s statsdProcessor) EventZeroCopy(evt sendlib.EventZeroCopy) {
	s.client.Incr(MetricZeroCopyCompleted, int64(evt.Completed))
	s.client.Incr(MetricZeroCopyCopied, int64(evt.Copied))
}

func (s statsdProcessor) EventBufferFailed(evt sendlib.EventBufferFailed) {
	if info, ok := s.streams[evt.StreamID()]; ok {
		info.bufferFailed = true
	}

	s.client.Incr(MetricBufferFailures, 1, s.strategyTag(evt.StreamID()))
}

func (s statsdProcessor) EventFinish(evt sendlib.EventFinish) {
	info, ok := s.streams[evt.StreamID()]
	if !ok {
		return
	}

	defer func() {
		delete(s.streams, evt.StreamID())
		releaseStreamInfo(info)
	}()

	s.client.PrecisionTiming(MetricSessionDuration, evt.Timestamp().Sub(info.startTime), info.T(TagStrategy))
	s.client.GaugeDelta(MetricActiveConnections, -1, info.T(TagStrategy), info.T(TagIPFamily))
	s.client.Incr(MetricStreamsFinished, 1,
		info.T(TagStrategy),
		statsd.StringTag(TagReason, getReason(evt, info.bufferFailed)))

	if evt.BufferLeaked {
		s.client.Incr(MetricBufferLeaks, 1, info.T(TagStrategy))
	}
}

func (s statsdProcessor) EventConcurrencyLimited(_ sendlib.EventConcurrencyLimited) {
	s.client.Incr(MetricConcurrencyLimited, 1)
}

func (s statsdProcessor) Shutdown() {
	for k, v := range s.streams {
		releaseStreamInfo(v)
		delete(s.streams, k)
	}
}

// StatsdFactory is a factory of [events.Observer] which dumps information to
// statsd.
//
// Statsd is a UDP protocol, so it is fire-and-forget.
type StatsdFactory struct {
	client *statsd.Client
}

// Make builds a new observer.
func (s StatsdFactory) Make() events.Observer {
	return statsdProcessor{
		client:  s.client,
		streams: make(map[string]*streamInfo),
	}
}

// Close stops sending requests to statsd.
func (s StatsdFactory) Close() error {
	return s.client.Close() //nolint: wrapcheck
}

// NewStatsd builds an event stream observer for statsd.
func NewStatsd(address string, log sendlib.Logger, metricPrefix, tagFormat string) (StatsdFactory, error) {
	options := []statsd.Option{
		statsd.MetricPrefix(metricPrefix),
		statsd.Logger(log),
	}

	switch strings.ToLower(tagFormat) {
	case "datadog":
		options = append(options, statsd.TagStyle(statsd.TagFormatDatadog))
	case "influxdb":
		options = append(options, statsd.TagStyle(statsd.TagFormatInfluxDB))
	case "graphite":
		options = append(options, statsd.TagStyle(statsd.TagFormatGraphite))
	default:
		return StatsdFactory{}, fmt.Errorf("unknown tag format %s", tagFormat)
	}

	return StatsdFactory{
		client: statsd.NewClient(address, options...),
	}, nil
}
