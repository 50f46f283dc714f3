package stats

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/akab00m/zcbench/events"
	"github.com/akab00m/zcbench/sendlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusProcessor struct {
	streams map[string]*streamInfo
	factory *PrometheusFactory
}

func (p prometheusProcessor) strategy(streamID string) string {
	if info, ok := p.streams[streamID]; ok {
		return info.tags[TagStrategy]
	}

	return unknownStrategy
}

func (p prometheusProcessor) EventStart(evt sendlib.EventStart) {
	info := acquireStreamInfo()
	info.fill(evt)

	p.streams[evt.StreamID()] = info

	p.factory.metricActiveConnections.
		WithLabelValues(info.tags[TagStrategy], info.tags[TagIPFamily]).
		Inc()
}

func (p prometheusProcessor) EventTraffic(evt sendlib.EventTraffic) {
	strategy := p.strategy(evt.StreamID())

	p.factory.metricBytesSent.WithLabelValues(strategy).Add(float64(evt.Traffic))
	p.factory.metricSendSyscalls.WithLabelValues(strategy).Add(float64(evt.Syscalls))
}

func (p prometheusProcessor) EventZeroCopy(evt sendlib.EventZeroCopy) {
	p.factory.metricZeroCopyCompleted.Add(float64(evt.Completed))
	p.factory.metricZeroCopyCopied.Add(float64(evt.Copied))
}

func (p prometheusProcessor) EventBufferFailed(evt sendlib.EventBufferFailed) {
	if info, ok := p.streams[evt.StreamID()]; ok {
		info.bufferFailed = true
	}

	p.factory.metricBufferFailures.
		WithLabelValues(p.strategy(evt.StreamID())).
		Inc()
}

func (p prometheusProcessor) EventFinish(evt sendlib.EventFinish) {
	info, ok := p.streams[evt.StreamID()]
	if !ok {
		return
	}

	defer func() {
		delete(p.streams, evt.StreamID())
		releaseStreamInfo(info)
	}()

	strategy := info.tags[TagStrategy]

	p.factory.metricSessionDuration.
		WithLabelValues(strategy).
		Observe(evt.Timestamp().Sub(info.startTime).Seconds())
	p.factory.metricActiveConnections.
		WithLabelValues(strategy, info.tags[TagIPFamily]).
		Dec()
	p.factory.metricStreamsFinished.
		WithLabelValues(strategy, getReason(evt, info.bufferFailed)).
		Inc()

	if evt.BufferLeaked {
		p.factory.metricBufferLeaks.Inc()
	}
}

func (p prometheusProcessor) EventConcurrencyLimited(_ sendlib.EventConcurrencyLimited) {
	p.factory.metricConcurrencyLimited.Inc()
}

func (p prometheusProcessor) Shutdown() {
	for k, v := range p.streams {
		releaseStreamInfo(v)
		delete(p.streams, k)
	}
}

// PrometheusFactory is a factory of [events.Observer] which collect
// information in a format suitable for Prometheus.
//
// This factory can also serve on a given listener. In that case it starts HTTP
// server with a single endpoint - a Prometheus-compatible scrape output.
type PrometheusFactory struct {
	httpServer *http.Server

	metricActiveConnections *prometheus.GaugeVec

	metricBytesSent       *prometheus.CounterVec
	metricSendSyscalls    *prometheus.CounterVec
	metricBufferFailures  *prometheus.CounterVec
	metricStreamsFinished *prometheus.CounterVec

	metricZeroCopyCompleted  prometheus.Counter
	metricZeroCopyCopied     prometheus.Counter
	metricBufferLeaks        prometheus.Counter
	metricConcurrencyLimited prometheus.Counter

	metricSessionDuration *prometheus.HistogramVec

	metricBuildInfo *prometheus.GaugeVec
}

// Make builds a new observer.
func (p *PrometheusFactory) Make() events.Observer {
	return prometheusProcessor{
		streams: make(map[string]*streamInfo),
		factory: p,
	}
}

// Serve starts an HTTP server on a given listener.
func (p *PrometheusFactory) Serve(listener net.Listener) error {
	return p.httpServer.Serve(listener) //nolint: wrapcheck
}

// Close stops a factory. Please pay attention that underlying listener
// is not closed.
func (p *PrometheusFactory) Close() error {
	return p.httpServer.Shutdown(context.Background()) //nolint: wrapcheck
}

// NewPrometheus builds an events.ObserverFactory which can serve HTTP
// endpoint with Prometheus scrape data.
func NewPrometheus(metricPrefix, httpPath, version string) *PrometheusFactory { //nolint: funlen
	registry := prometheus.NewPedanticRegistry()
	httpHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	mux := http.NewServeMux()

	mux.Handle(httpPath, httpHandler)

	factory := &PrometheusFactory{
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second, //nolint: gomnd
		},

		metricActiveConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      MetricActiveConnections,
			Help:      "A number of connections which are streaming now.",
		}, []string{TagStrategy, TagIPFamily}),

		metricBytesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricBytesSent,
			Help:      "Bytes which were put into sockets.",
		}, []string{TagStrategy}),
		metricSendSyscalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricSendSyscalls,
			Help:      "A number of send calls which have moved data.",
		}, []string{TagStrategy}),
		metricBufferFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricBufferFailures,
			Help:      "A number of connections dropped because message cannot be allocated.",
		}, []string{TagStrategy}),
		metricStreamsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricStreamsFinished,
			Help:      "A number of finished streams by reason.",
		}, []string{TagStrategy, TagReason}),

		metricZeroCopyCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricZeroCopyCompleted,
			Help:      "A number of zero-copy sends the kernel is done with.",
		}),
		metricZeroCopyCopied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricZeroCopyCopied,
			Help:      "A number of zero-copy sends where the kernel has copied data anyway.",
		}),
		metricBufferLeaks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricBufferLeaks,
			Help:      "A number of messages which were still referenced by the kernel on close.",
		}),
		metricConcurrencyLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricConcurrencyLimited,
			Help:      "A number of sessions that were rejected by concurrency limiter.",
		}),

		metricSessionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricPrefix,
			Name:      MetricSessionDuration + "_seconds",
			Help:      "Duration of streams in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{TagStrategy}),

		metricBuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      "build_info",
			Help:      "Build information about zcbench.",
		}, []string{"version"}),
	}

	registry.MustRegister(factory.metricActiveConnections)

	registry.MustRegister(factory.metricBytesSent)
	registry.MustRegister(factory.metricSendSyscalls)
	registry.MustRegister(factory.metricBufferFailures)
	registry.MustRegister(factory.metricStreamsFinished)

	registry.MustRegister(factory.metricZeroCopyCompleted)
	registry.MustRegister(factory.metricZeroCopyCopied)
	registry.MustRegister(factory.metricBufferLeaks)
	registry.MustRegister(factory.metricConcurrencyLimited)

	registry.MustRegister(factory.metricSessionDuration)

	registry.MustRegister(factory.metricBuildInfo)
	factory.metricBuildInfo.WithLabelValues(version).Set(1)

	return factory
}
