// Package stats contains default implementation of statistics for the
// benchmark server.
//
// These are Prometheus and StatsD observers of the event stream. Both
// count the same things: bytes and send calls per strategy, zero-copy
// completions and how a stream has ended.
package stats

import (
	"errors"

	"github.com/akab00m/zcbench/sendlib"
)

const (
	DefaultMetricPrefix       = "zcbench"
	DefaultStatsdMetricPrefix = "zcbench."
	DefaultStatsdTagFormat    = "influxdb"

	MetricActiveConnections  = "active_connections"
	MetricBytesSent          = "bytes_sent"
	MetricSendSyscalls       = "send_syscalls"
	MetricZeroCopyCompleted  = "zerocopy_completions"
	MetricZeroCopyCopied     = "zerocopy_copied"
	MetricBufferFailures     = "buffer_failures"
	MetricBufferLeaks        = "buffer_leaks"
	MetricConcurrencyLimited = "concurrency_limited"
	MetricStreamsFinished    = "streams_finished"
	MetricSessionDuration    = "session_duration"

	TagStrategy     = "strategy"
	TagIPFamily     = "ip_family"
	TagIPFamilyIPv4 = "ipv4"
	TagIPFamilyIPv6 = "ipv6"
	TagReason       = "reason"

	ReasonShutdown          = "shutdown"
	ReasonPeerClosed        = "peer_closed"
	ReasonCompletionBacklog = "completion_backlog"
	ReasonBufferFailed      = "buffer_failed"
	ReasonError             = "error"

	unknownStrategy = "unknown"
)

func getReason(evt sendlib.EventFinish, bufferFailed bool) string {
	switch {
	case bufferFailed:
		return ReasonBufferFailed
	case evt.Reason == nil:
		return ReasonShutdown
	case errors.Is(evt.Reason, sendlib.ErrCompletionBacklog):
		return ReasonCompletionBacklog
	case sendlib.IsConnectionClosedError(evt.Reason):
		return ReasonPeerClosed
	}

	return ReasonError
}
