package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/akab00m/zcbench/events"
	"github.com/akab00m/zcbench/internal/config"
	"github.com/akab00m/zcbench/internal/utils"
	"github.com/akab00m/zcbench/logger"
	"github.com/akab00m/zcbench/sendlib"
	"github.com/akab00m/zcbench/stats"
	"github.com/rs/zerolog"
)

func makeLogger(debug bool) sendlib.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	baseLogger := zerolog.New(os.Stderr).
		With().
		Timestamp().
		Logger()

	return logger.NewZeroLogger(baseLogger)
}

func makeEventStream(conf *config.Config, log sendlib.Logger, version string) (sendlib.EventStream, []io.Closer, error) {
	factories := []events.ObserverFactory{}
	closers := []io.Closer{}

	if conf.Stats.StatsD.Enabled.Get(false) {
		statsdFactory, err := stats.NewStatsd(
			conf.Stats.StatsD.Address.Get(""),
			log.Named("statsd"),
			conf.Stats.StatsD.MetricPrefix.Get(stats.DefaultStatsdMetricPrefix),
			conf.Stats.StatsD.TagFormat.Get(stats.DefaultStatsdTagFormat))
		if err != nil {
			return nil, nil, fmt.Errorf("cannot build statsd observer: %w", err)
		}

		factories = append(factories, statsdFactory.Make)
		closers = append(closers, statsdFactory)
	}

	if conf.Stats.Prometheus.Enabled.Get(false) {
		prometheus := stats.NewPrometheus(
			conf.Stats.Prometheus.MetricPrefix.Get(stats.DefaultMetricPrefix),
			conf.Stats.Prometheus.HTTPPath.Get("/"),
			version)

		listener, err := utils.NewListener(conf.Stats.Prometheus.BindTo.Get(""), 0, false, false)
		if err != nil {
			closeAll(closers)

			return nil, nil, fmt.Errorf("cannot start a listener for prometheus: %w", err)
		}

		go prometheus.Serve(listener) //nolint: errcheck

		factories = append(factories, prometheus.Make)
		closers = append(closers, prometheus, listener)
	}

	if len(factories) > 0 {
		return events.NewEventStream(factories), closers, nil
	}

	return events.NewNoopStream(), closers, nil
}

func closeAll(closers []io.Closer) {
	for _, v := range closers {
		v.Close()
	}
}

func runServer(conf *config.Config, version string) error { //nolint: funlen
	log := makeLogger(conf.Debug.Get(false))

	log.BindStr("configuration", conf.String()).Debug("configuration")

	eventStream, closers, err := makeEventStream(conf, log, version)
	if err != nil {
		return fmt.Errorf("cannot build event stream: %w", err)
	}

	defer closeAll(closers)

	if stream, ok := eventStream.(events.EventStream); ok {
		defer stream.Shutdown()
	}

	server, err := sendlib.NewServer(sendlib.ServerOpts{
		Strategy:        conf.Strategy.Get(sendlib.StrategyZeroCopy),
		MessageSize:     conf.MessageSize.Get(sendlib.DefaultMessageSize),
		Connections:     conf.Connections.Get(sendlib.DefaultConnections),
		EventStream:     eventStream,
		Logger:          log.Named("server"),
		MaxRate:         conf.MaxRate.Get(0),
		VerifyOnRelease: conf.VerifyOnRelease.Get(false),
		ZeroCopy: sendlib.ZeroCopyOpts{
			IgnoreCompletions: conf.ZeroCopy.IgnoreCompletions.Get(false),
			MaxInFlight:       conf.ZeroCopy.MaxInFlight.Get(sendlib.DefaultMaxInFlight),
			PollTimeout:       conf.ZeroCopy.PollTimeout.Get(sendlib.DefaultPollTimeout),
			ReleaseTimeout:    conf.ZeroCopy.ReleaseTimeout.Get(sendlib.DefaultReleaseTimeout),
		},
	})
	if err != nil {
		return fmt.Errorf("cannot create a server: %w", err)
	}

	listener, err := utils.NewListener(
		conf.BindTo.Get(""),
		int(conf.Network.SendBufferSize.Get(0)),
		conf.Network.TCPFastOpen.Get(false),
		conf.Network.TCPCork.Get(false))
	if err != nil {
		server.Shutdown()

		return fmt.Errorf("cannot start server: %w", err)
	}

	log.BindStr("bind_to", listener.Addr().String()).
		BindStr("strategy", server.Strategy().String()).
		BindInt("connections", int(conf.Connections.Get(sendlib.DefaultConnections))).
		Info("server is listening")

	if listener.IsTFOEnabled() {
		log.Info("TCP Fast Open is enabled")
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(signals)

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case <-signals:
	case err := <-serveErr:
		if err != nil {
			listener.Close()
			server.Shutdown()

			return fmt.Errorf("server has failed: %w", err)
		}

		listener.Close()
		<-signals
	}

	log.Info("shutting down")

	listener.Close()
	server.Shutdown()

	return nil
}
