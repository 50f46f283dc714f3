package cli

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/akab00m/zcbench/internal/config"
)

type SimpleRun struct {
	Port        uint16 `kong:"arg,required,help='Port to listen on.',name='port'"`
	MessageSize string `kong:"arg,required,help='Message size, a multiple of 8 (800000, 800KB).',name='msg-size'"`
	Connections uint   `kong:"arg,required,help='A number of connections to accept.',name='connections'"`

	BindIP            string        `kong:"help='IP address to bind to.',short='b',default='0.0.0.0'"`
	Strategy          string        `kong:"help='Transmission strategy: copy, vector or zerocopy.',short='s',default='zerocopy'"` //nolint: lll
	MaxRate           string        `kong:"help='Pace limit for each connection (100MB/s). 0 means unlimited.',short='r',default='0'"` //nolint: lll
	SendBufferSize    string        `kong:"help='SO_SNDBUF of accepted sockets. 0 means kernel default.',default='0'"`
	TCPFastOpen       bool          `kong:"help='Enable TCP Fast Open on the listener.',name='tcp-fast-open'"`
	TCPCork           bool          `kong:"help='Set TCP_CORK on accepted sockets.',name='tcp-cork'"`
	VerifyOnRelease   bool          `kong:"help='Check that a message was not changed before it is released.'"`
	IgnoreCompletions bool          `kong:"help='Do not read zero-copy completions. Sends will fail with ENOBUFS eventually.'"` //nolint: lll
	MaxInFlight       uint          `kong:"help='A number of zero-copy sends which may wait for completions.',default='64'"` //nolint: lll
	PollTimeout       time.Duration `kong:"help='Time to wait for completions when zero-copy window is full.',default='100ms'"` //nolint: lll
	ReleaseTimeout    time.Duration `kong:"help='Time to wait for the last completions on close.',default='5s'"`
	Debug             bool          `kong:"help='Run in debug mode.',short='d'"`
}

func (s *SimpleRun) Run(cli *CLI, version string) error { //nolint: cyclop
	conf := &config.Config{}

	if err := conf.BindTo.Set(net.JoinHostPort(s.BindIP, strconv.Itoa(int(s.Port)))); err != nil {
		return fmt.Errorf("incorrect bind address: %w", err)
	}

	if err := conf.MessageSize.Set(s.MessageSize); err != nil {
		return fmt.Errorf("incorrect message size: %w", err)
	}

	if err := conf.Connections.Set(strconv.FormatUint(uint64(s.Connections), 10)); err != nil {
		return fmt.Errorf("incorrect number of connections: %w", err)
	}

	if err := conf.Strategy.Set(s.Strategy); err != nil {
		return fmt.Errorf("incorrect strategy: %w", err)
	}

	if err := conf.MaxRate.Set(s.MaxRate); err != nil {
		return fmt.Errorf("incorrect max rate: %w", err)
	}

	if err := conf.Network.SendBufferSize.Set(s.SendBufferSize); err != nil {
		return fmt.Errorf("incorrect send buffer size: %w", err)
	}

	if err := conf.ZeroCopy.MaxInFlight.Set(strconv.FormatUint(uint64(s.MaxInFlight), 10)); err != nil {
		return fmt.Errorf("incorrect max in flight: %w", err)
	}

	if err := conf.ZeroCopy.PollTimeout.Set(s.PollTimeout.String()); err != nil {
		return fmt.Errorf("incorrect poll timeout: %w", err)
	}

	if err := conf.ZeroCopy.ReleaseTimeout.Set(s.ReleaseTimeout.String()); err != nil {
		return fmt.Errorf("incorrect release timeout: %w", err)
	}

	conf.Debug.Value = s.Debug
	conf.VerifyOnRelease.Value = s.VerifyOnRelease
	conf.Network.TCPFastOpen.Value = s.TCPFastOpen
	conf.Network.TCPCork.Value = s.TCPCork
	conf.ZeroCopy.IgnoreCompletions.Value = s.IgnoreCompletions

	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid result configuration: %w", err)
	}

	return runServer(conf, version)
}
