package network_test

import (
	"net"
	"testing"
	"time"

	"github.com/akab00m/zcbench/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type DefaultDialerTestSuite struct {
	suite.Suite

	listener net.Listener
	accepted chan net.Conn
}

func (suite *DefaultDialerTestSuite) SetupTest() {
	listener, err := network.ListenTFO("tcp", "127.0.0.1:0", network.DefaultTFOConfig())
	suite.Require().NoError(err)

	suite.listener = listener
	suite.accepted = make(chan net.Conn, 1)

	go func() {
		conn, err := listener.Accept()
		if err == nil {
			suite.accepted <- conn
		}
	}()
}

func (suite *DefaultDialerTestSuite) TearDownTest() {
	suite.listener.Close()
}

func (suite *DefaultDialerTestSuite) TestDial() {
	for _, tfo := range []bool{false, true} {
		dialer, err := network.NewDefaultDialer(time.Second, 128*1024, tfo)
		suite.Require().NoError(err)

		conn, err := dialer.Dial("tcp", suite.listener.Addr().String())
		suite.Require().NoError(err)

		serverConn := <-suite.accepted
		suite.NoError(network.SetServerSocketOptions(serverConn, 64*1024))

		_, err = conn.Write([]byte{1})
		suite.NoError(err)

		serverConn.Close()
		conn.Close()

		go func() {
			if conn, err := suite.listener.Accept(); err == nil {
				suite.accepted <- conn
			}
		}()
	}
}

func (suite *DefaultDialerTestSuite) TestUnsupportedNetwork() {
	dialer, err := network.NewDefaultDialer(0, 0, false)
	suite.Require().NoError(err)

	_, err = dialer.Dial("udp", suite.listener.Addr().String())
	suite.Error(err)
}

func (suite *DefaultDialerTestSuite) TestCannotDial() {
	dialer, err := network.NewDefaultDialer(time.Second, 0, false)
	suite.Require().NoError(err)

	addr := suite.listener.Addr().String()
	suite.listener.Close()

	_, err = dialer.Dial("tcp", addr)
	suite.Error(err)
}

func TestDefaultDialer(t *testing.T) {
	t.Parallel()
	suite.Run(t, &DefaultDialerTestSuite{})
}

func TestNegativeTimeout(t *testing.T) {
	t.Parallel()

	_, err := network.NewDefaultDialer(-time.Second, 0, false)
	assert.Error(t, err)
}

func TestSocketOptionsRejectNotTCP(t *testing.T) {
	t.Parallel()

	one, two := net.Pipe()

	defer one.Close()
	defer two.Close()

	require.ErrorIs(t, network.SetServerSocketOptions(one, 0), network.ErrNotTCP)
	require.ErrorIs(t, network.SetClientSocketOptions(two, 0), network.ErrNotTCP)
	require.NoError(t, network.SetTCPQuickACK(one))
}

func TestTCPCork(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer listener.Close()

	go func() {
		if conn, err := net.Dial("tcp", listener.Addr().String()); err == nil {
			time.Sleep(100 * time.Millisecond)
			conn.Close()
		}
	}()

	conn, err := listener.Accept()
	require.NoError(t, err)

	defer conn.Close()

	assert.NoError(t, network.SetTCPCork(conn, true))
	assert.NoError(t, network.SetTCPCork(conn, false))
}
