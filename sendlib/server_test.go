package sendlib_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/akab00m/zcbench/internal/testlib"
	"github.com/akab00m/zcbench/logger"
	"github.com/akab00m/zcbench/receiver"
	"github.com/akab00m/zcbench/sendlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testMessageSize = 8 * 1024

type ServerTestSuite struct {
	suite.Suite

	strategy    sendlib.Strategy
	eventStream *testlib.EventStreamMock
	allocator   *testlib.AllocatorMock
	listener    net.Listener

	eventsMutex sync.Mutex
	events      []sendlib.Event
}

func (suite *ServerTestSuite) SetupTest() {
	suite.events = nil
	suite.eventStream = &testlib.EventStreamMock{}
	suite.eventStream.
		On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			suite.eventsMutex.Lock()
			defer suite.eventsMutex.Unlock()

			suite.events = append(suite.events, args.Get(1).(sendlib.Event)) //nolint: forcetypeassert
		}).
		Maybe()

	suite.allocator = &testlib.AllocatorMock{}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	suite.Require().NoError(err)

	suite.listener = listener
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.listener.Close()
	suite.eventStream.AssertExpectations(suite.T())
	suite.allocator.AssertExpectations(suite.T())
}

func (suite *ServerTestSuite) makeServer(connections uint, tune func(*sendlib.ServerOpts)) *sendlib.Server {
	opts := sendlib.ServerOpts{
		Strategy:        suite.strategy,
		MessageSize:     testMessageSize,
		Connections:     connections,
		EventStream:     suite.eventStream,
		Logger:          logger.NewNoopLogger(),
		VerifyOnRelease: true,
		ZeroCopy: sendlib.ZeroCopyOpts{
			ReleaseTimeout: time.Second,
		},
	}

	if tune != nil {
		tune(&opts)
	}

	server, err := sendlib.NewServer(opts)
	if errors.Is(err, sendlib.ErrUnsupportedStrategy) {
		suite.T().Skip("strategy is not supported on this platform")
	}

	suite.Require().NoError(err)

	go server.Serve(suite.listener) //nolint: errcheck

	return server
}

func (suite *ServerTestSuite) dial() net.Conn {
	conn, err := net.Dial("tcp", suite.listener.Addr().String())
	suite.Require().NoError(err)

	return conn
}

func (suite *ServerTestSuite) receive(conn net.Conn, duration time.Duration) receiver.Result {
	verifier, err := receiver.NewVerifier(testMessageSize)
	suite.Require().NoError(err)

	res, err := receiver.Receive(context.Background(), conn, testMessageSize, duration, verifier)
	suite.Require().NoError(err)
	suite.Equal(res.Bytes, verifier.Verified())

	return res
}

func (suite *ServerTestSuite) collected() []sendlib.Event {
	suite.eventsMutex.Lock()
	defer suite.eventsMutex.Unlock()

	return append([]sendlib.Event{}, suite.events...)
}

func (suite *ServerTestSuite) finishes() []sendlib.EventFinish {
	var rv []sendlib.EventFinish

	for _, evt := range suite.collected() {
		if finish, ok := evt.(sendlib.EventFinish); ok {
			rv = append(rv, finish)
		}
	}

	return rv
}

func (suite *ServerTestSuite) TestStream() {
	server := suite.makeServer(1, nil)

	conn := suite.dial()
	res := suite.receive(conn, 200*time.Millisecond)

	suite.Positive(res.Bytes)
	conn.Close()

	server.Shutdown()

	finishes := suite.finishes()
	suite.Require().Len(finishes, 1)
	suite.False(finishes[0].BufferLeaked)

	var (
		starts  int
		traffic uint
	)

	for _, evt := range suite.collected() {
		switch typed := evt.(type) {
		case sendlib.EventStart:
			starts++

			suite.Equal(suite.strategy, typed.Strategy)
			suite.True(typed.RemoteIP.IsLoopback())
		case sendlib.EventTraffic:
			traffic += typed.Traffic
		}
	}

	suite.Equal(1, starts)
	suite.GreaterOrEqual(uint64(traffic), res.Bytes)
}

func (suite *ServerTestSuite) TestLongerReadGetsMoreBytes() {
	server := suite.makeServer(2, nil)
	defer server.Shutdown()

	short := suite.dial()
	defer short.Close()

	long := suite.dial()
	defer long.Close()

	var (
		wg       sync.WaitGroup
		shortRes receiver.Result
		longRes  receiver.Result
	)

	wg.Add(2)

	go func() {
		defer wg.Done()

		shortRes = suite.receive(short, 100*time.Millisecond)
	}()

	go func() {
		defer wg.Done()

		longRes = suite.receive(long, 600*time.Millisecond)
	}()

	wg.Wait()

	suite.Positive(shortRes.Bytes)
	suite.Greater(longRes.Bytes, shortRes.Bytes)
}

func (suite *ServerTestSuite) TestSyscallsPerMessage() {
	server := suite.makeServer(1, nil)

	conn := suite.dial()
	suite.receive(conn, 200*time.Millisecond)
	conn.Close()

	server.Shutdown()

	var traffic, syscalls uint

	for _, evt := range suite.collected() {
		if typed, ok := evt.(sendlib.EventTraffic); ok {
			traffic += typed.Traffic
			syscalls += typed.Syscalls
		}
	}

	messages := traffic / testMessageSize
	suite.Positive(messages)

	if suite.strategy == sendlib.StrategyCopy {
		suite.GreaterOrEqual(syscalls, messages*sendlib.SegmentCount)
	} else {
		suite.GreaterOrEqual(syscalls, messages)
		suite.Less(syscalls, messages*sendlib.SegmentCount)
	}
}

func (suite *ServerTestSuite) TestBufferFailure() {
	suite.allocator.
		On("Alloc", testMessageSize/sendlib.SegmentCount).
		Once().
		Return(nil, errors.New("no memory"))

	server := suite.makeServer(1, func(opts *sendlib.ServerOpts) {
		opts.Allocator = suite.allocator
	})

	conn := suite.dial()
	defer conn.Close()

	res, err := receiver.Receive(context.Background(), conn, 1024, 5*time.Second)
	suite.NoError(err)
	suite.Zero(res.Bytes)
	suite.Less(res.Elapsed, 5*time.Second)

	server.Shutdown()

	failed := 0

	for _, evt := range suite.collected() {
		if typed, ok := evt.(sendlib.EventBufferFailed); ok {
			failed++

			suite.Equal(testMessageSize, typed.Size)
		}
	}

	suite.Equal(1, failed)

	finishes := suite.finishes()
	suite.Require().Len(finishes, 1)
	suite.Error(finishes[0].Reason)
}

func (suite *ServerTestSuite) TestShutdownUnblocksWorker() {
	server := suite.makeServer(1, func(opts *sendlib.ServerOpts) {
		opts.ZeroCopy.ReleaseTimeout = 100 * time.Millisecond
	})

	// nobody reads, so a worker gets stuck on full socket buffers
	conn := suite.dial()
	defer conn.Close()

	suite.Eventually(func() bool {
		for _, evt := range suite.collected() {
			if _, ok := evt.(sendlib.EventStart); ok {
				return true
			}
		}

		return false
	}, 5*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})

	go func() {
		server.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		suite.FailNow("shutdown has stuck")
	}

	finishes := suite.finishes()
	suite.Require().Len(finishes, 1)
	suite.NoError(finishes[0].Reason)
}

func TestCopyingServer(t *testing.T) {
	t.Parallel()
	suite.Run(t, &ServerTestSuite{strategy: sendlib.StrategyCopy})
}

func TestVectorizedServer(t *testing.T) {
	t.Parallel()
	suite.Run(t, &ServerTestSuite{strategy: sendlib.StrategyVector})
}

func TestZeroCopyServer(t *testing.T) {
	t.Parallel()
	suite.Run(t, &ServerTestSuite{strategy: sendlib.StrategyZeroCopy})
}

type ServerOptsTestSuite struct {
	suite.Suite

	opts sendlib.ServerOpts
}

func (suite *ServerOptsTestSuite) SetupTest() {
	suite.opts = sendlib.ServerOpts{
		Connections: 1,
		EventStream: &testlib.EventStreamMock{},
		Logger:      logger.NewNoopLogger(),
	}
}

func (suite *ServerOptsTestSuite) TestDefaults() {
	server, err := sendlib.NewServer(suite.opts)
	suite.Require().NoError(err)

	defer server.Shutdown()

	suite.Equal(sendlib.StrategyCopy, server.Strategy())
}

func (suite *ServerOptsTestSuite) TestMessageSize() {
	suite.opts.MessageSize = 12

	_, err := sendlib.NewServer(suite.opts)
	suite.ErrorIs(err, sendlib.ErrMessageSizeInvalid)
}

func (suite *ServerOptsTestSuite) TestMandatory() {
	opts := suite.opts
	opts.Logger = nil

	_, err := sendlib.NewServer(opts)
	suite.ErrorIs(err, sendlib.ErrLoggerIsNotDefined)

	opts = suite.opts
	opts.EventStream = nil

	_, err = sendlib.NewServer(opts)
	suite.ErrorIs(err, sendlib.ErrEventStreamIsNotDefined)

	opts = suite.opts
	opts.Connections = 0

	_, err = sendlib.NewServer(opts)
	suite.ErrorIs(err, sendlib.ErrConnectionsIsNotDefined)
}

func TestServerOpts(t *testing.T) {
	t.Parallel()
	suite.Run(t, &ServerOptsTestSuite{})
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	strategy, err := sendlib.ParseStrategy("vector")
	require.NoError(t, err)
	assert.Equal(t, sendlib.StrategyVector, strategy)
	assert.Equal(t, "vector", strategy.String())

	_, err = sendlib.ParseStrategy("sendfile")
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	t.Parallel()

	names := map[sendlib.State]string{
		sendlib.StateAccepted:    "accepted",
		sendlib.StateBufferBuilt: "buffer-built",
		sendlib.StateStreaming:   "streaming",
		sendlib.StateClosing:     "closing",
		sendlib.StateDone:        "done",
	}

	for state, name := range names {
		assert.Equal(t, name, state.String())
	}
}
