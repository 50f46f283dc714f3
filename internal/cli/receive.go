package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/akab00m/zcbench/internal/config"
	"github.com/akab00m/zcbench/network"
	"github.com/akab00m/zcbench/receiver"
)

type Receive struct {
	IP          string `kong:"arg,required,help='IP address of the server.',name='ip'"`
	Port        uint16 `kong:"arg,required,help='Port of the server.',name='port'"`
	MessageSize string `kong:"arg,required,help='Message size the server sends.',name='msg-size'"`
	Duration    uint   `kong:"arg,required,help='How long to read, in seconds.',name='duration'"`

	BufferSize  string        `kong:"help='Read buffer size. Message size by default.',default='0'"`
	Timeout     time.Duration `kong:"help='Connection timeout.',short='t',default='10s'"`
	TCPFastOpen bool          `kong:"help='Connect with TCP Fast Open.',name='tcp-fast-open'"`
	Verify      bool          `kong:"help='Check that the stream is made of well-formed messages.'"`
	Debug       bool          `kong:"help='Run in debug mode.',short='d'"`
}

func (r *Receive) Run(cli *CLI, version string) error {
	messageSize := config.TypeBytes{}
	if err := messageSize.Set(r.MessageSize); err != nil {
		return fmt.Errorf("incorrect message size: %w", err)
	}

	bufferSize := config.TypeBytes{}
	if err := bufferSize.Set(r.BufferSize); err != nil {
		return fmt.Errorf("incorrect buffer size: %w", err)
	}

	readSize := int(bufferSize.Get(messageSize.Get(network.DefaultReceiveBufferSize)))
	log := makeLogger(r.Debug).Named("receiver")

	sinks := []io.Writer{}

	var verifier *receiver.Verifier

	if r.Verify {
		v, err := receiver.NewVerifier(int(messageSize.Get(0)))
		if err != nil {
			return fmt.Errorf("cannot build verifier: %w", err)
		}

		verifier = v
		sinks = append(sinks, verifier)
	}

	dialer, err := network.NewDefaultDialer(r.Timeout, readSize, r.TCPFastOpen)
	if err != nil {
		return fmt.Errorf("cannot build dialer: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	address := net.JoinHostPort(r.IP, strconv.Itoa(int(r.Port)))

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("cannot connect to %s: %w", address, err)
	}

	defer conn.Close()

	result, err := receiver.Receive(ctx, conn, readSize, time.Duration(r.Duration)*time.Second, sinks...)
	if err != nil {
		// a broken stream is still a measurement
		log.WarningError("stream has ended with error", err)
	}

	log.BindStr("elapsed", result.Elapsed.String()).
		BindStr("throughput", fmt.Sprintf("%.2f Mbit/s", result.Throughput()/1e6)). //nolint: gomnd
		Info("stream is measured")

	if verifier != nil {
		log.BindStr("verified_bytes", strconv.FormatUint(verifier.Verified(), 10)).Info("stream is verified")
	}

	fmt.Fprintln(os.Stdout, result.Bytes) //nolint: errcheck

	return nil
}
