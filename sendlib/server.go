package sendlib

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/akab00m/zcbench/sendlib/internal/strategy"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"
)

const acceptRetryDelay = 50 * time.Millisecond

// Server streams messages to accepted connections.
type Server struct {
	ctx             context.Context
	ctxCancel       context.CancelFunc
	streamWaitGroup sync.WaitGroup

	workerPool      *ants.PoolWithFunc
	strategy        strategy.Strategy
	allocator       Allocator
	messageSize     int
	connections     int
	rateLimit       rate.Limit
	rateBurst       int
	verifyOnRelease bool

	eventStream EventStream
	logger      Logger
}

// Strategy returns a transmission strategy of the server.
func (s *Server) Strategy() Strategy {
	return s.strategy.Kind()
}

// ServeConn serves a connection. This is blocking call, it returns when
// the worker reaches Done state.
func (s *Server) ServeConn(conn net.Conn) {
	s.streamWaitGroup.Add(1)
	defer s.streamWaitGroup.Done()

	newWorker(s, conn).run()
}

// Serve accepts connections until a connection target is reached. Then it
// returns nil, workers continue to stream.
func (s *Server) Serve(listener net.Listener) error {
	s.streamWaitGroup.Add(1)
	defer s.streamWaitGroup.Done()

	for accepted := 0; accepted < s.connections; {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return nil
			default:
			}

			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("cannot accept a new connection: %w", err)
			}

			s.logger.WarningError("cannot accept a new connection", err)

			select {
			case <-s.ctx.Done():
				return nil
			case <-time.After(acceptRetryDelay):
			}

			continue
		}

		accepted++

		// a worker may not start before Shutdown, so count it in advance
		s.streamWaitGroup.Add(1)

		err = s.workerPool.Invoke(conn)
		if err != nil {
			s.streamWaitGroup.Done()
		}

		switch {
		case err == nil:
		case errors.Is(err, ants.ErrPoolClosed):
			conn.Close()

			return nil
		case errors.Is(err, ants.ErrPoolOverload):
			conn.Close()
			s.logger.Info("connection was concurrency limited")
			s.eventStream.Send(s.ctx, NewEventConcurrencyLimited())
		}
	}

	s.logger.BindInt("connections", s.connections).Info("connection target is reached")

	return nil
}

// Shutdown stops all workers and waits until they release their
// resources. Please remember that it does not close an underlying
// listener.
func (s *Server) Shutdown() {
	s.ctxCancel()
	s.streamWaitGroup.Wait()
	s.workerPool.Release()
}

// Done is closed when server is shutting down.
func (s *Server) Done() <-chan struct{} {
	return s.ctx.Done()
}

// NewServer makes a new server instance.
func NewServer(opts ServerOpts) (*Server, error) {
	if err := opts.valid(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	strat, err := strategy.New(opts.Strategy, opts.getLogger("strategy"), strategy.ZeroCopyOptions{
		IgnoreCompletions: opts.ZeroCopy.IgnoreCompletions,
		MaxInFlight:       int(opts.ZeroCopy.MaxInFlight),
		PollTimeout:       opts.ZeroCopy.PollTimeout,
		ReleaseTimeout:    opts.ZeroCopy.ReleaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot build strategy %v: %w", opts.Strategy, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	limit, burst := opts.getLimit()

	server := &Server{
		ctx:             ctx,
		ctxCancel:       cancel,
		strategy:        strat,
		allocator:       opts.Allocator,
		messageSize:     opts.getMessageSize(),
		connections:     int(opts.Connections),
		rateLimit:       limit,
		rateBurst:       burst,
		verifyOnRelease: opts.VerifyOnRelease,
		eventStream:     opts.EventStream,
		logger:          opts.getLogger("server"),
	}

	if server.allocator == nil {
		server.allocator = strat.Allocator()
	}

	pool, err := ants.NewPoolWithFunc(server.connections,
		func(arg interface{}) {
			defer server.streamWaitGroup.Done()

			newWorker(server, arg.(net.Conn)).run() //nolint: forcetypeassert
		},
		ants.WithLogger(opts.getLogger("ants")),
		ants.WithNonblocking(true))
	if err != nil {
		cancel()

		return nil, fmt.Errorf("cannot create worker pool: %w", err)
	}

	server.workerPool = pool

	return server, nil
}
