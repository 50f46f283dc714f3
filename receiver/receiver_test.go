package receiver_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/akab00m/zcbench/receiver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func makeMessage(size int) []byte {
	segmentSize := size / 8
	rv := make([]byte, 0, size)

	for i := 0; i < 8; i++ {
		rv = append(rv, bytes.Repeat([]byte{byte('A' + i)}, segmentSize)...)
	}

	return rv
}

type ReceiveTestSuite struct {
	suite.Suite

	client net.Conn
	server net.Conn
}

func (suite *ReceiveTestSuite) SetupTest() {
	suite.client, suite.server = net.Pipe()
}

func (suite *ReceiveTestSuite) TearDownTest() {
	suite.client.Close()
	suite.server.Close()
}

func (suite *ReceiveTestSuite) TestEOF() {
	go func() {
		suite.server.Write(makeMessage(64)) //nolint: errcheck
		suite.server.Close()
	}()

	res, err := receiver.Receive(context.Background(), suite.client, 16, time.Minute)

	suite.NoError(err)
	suite.EqualValues(64, res.Bytes)
	suite.Positive(res.Elapsed)
}

func (suite *ReceiveTestSuite) TestDurationElapsed() {
	go func() {
		msg := makeMessage(64)

		for {
			if _, err := suite.server.Write(msg); err != nil {
				return
			}
		}
	}()

	res, err := receiver.Receive(context.Background(), suite.client, 64, 50*time.Millisecond)

	suite.NoError(err)
	suite.Positive(res.Bytes)
	suite.GreaterOrEqual(res.Elapsed, 50*time.Millisecond)
	suite.Positive(res.Throughput())
}

func (suite *ReceiveTestSuite) TestContextCancelled() {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := receiver.Receive(ctx, suite.client, 64, time.Minute)

	suite.ErrorIs(err, context.Canceled)
}

func (suite *ReceiveTestSuite) TestSinkIsFed() {
	verifier, err := receiver.NewVerifier(64)
	suite.Require().NoError(err)

	go func() {
		for i := 0; i < 10; i++ {
			suite.server.Write(makeMessage(64)) //nolint: errcheck
		}

		suite.server.Close()
	}()

	res, err := receiver.Receive(context.Background(), suite.client, 10, time.Minute, verifier)

	suite.NoError(err)
	suite.EqualValues(640, res.Bytes)
	suite.EqualValues(640, verifier.Verified())
}

func (suite *ReceiveTestSuite) TestSinkRejects() {
	verifier, err := receiver.NewVerifier(64)
	suite.Require().NoError(err)

	go func() {
		suite.server.Write(bytes.Repeat([]byte{'Z'}, 64)) //nolint: errcheck
	}()

	_, err = receiver.Receive(context.Background(), suite.client, 64, time.Minute, verifier)

	suite.ErrorIs(err, receiver.ErrPatternMismatch)
}

func (suite *ReceiveTestSuite) TestIncorrectBuffer() {
	_, err := receiver.Receive(context.Background(), suite.client, 0, time.Minute)

	suite.Error(err)
}

func TestReceive(t *testing.T) {
	t.Parallel()
	suite.Run(t, &ReceiveTestSuite{})
}

func TestThroughput(t *testing.T) {
	t.Parallel()

	res := receiver.Result{Bytes: 125, Elapsed: time.Second}
	assert.InDelta(t, 1000.0, res.Throughput(), 0.001)
	assert.Zero(t, receiver.Result{Bytes: 1}.Throughput())
}

func TestVerifier(t *testing.T) {
	t.Parallel()

	_, err := receiver.NewVerifier(12)
	require.Error(t, err)

	verifier, err := receiver.NewVerifier(16)
	require.NoError(t, err)

	stream := append(makeMessage(16), makeMessage(16)...)

	// arbitrary chunking must not matter
	for _, chunk := range [][]byte{stream[:3], stream[3:4], stream[4:21], stream[21:]} {
		n, err := verifier.Write(chunk)

		require.NoError(t, err)
		assert.Len(t, chunk, n)
	}

	assert.EqualValues(t, 32, verifier.Verified())

	n, err := verifier.Write([]byte("AAA"))
	assert.Equal(t, 2, n)
	assert.True(t, errors.Is(err, receiver.ErrPatternMismatch))
}
