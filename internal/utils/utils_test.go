package utils_test

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/akab00m/zcbench/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte("bindTo = \"127.0.0.1:4000\"\nconnections = 2\n"), 0o600))

	conf, err := utils.ReadConfig(path)
	require.NoError(t, err)
	assert.EqualValues(t, 2, conf.Connections.Get(1))

	_, err = utils.ReadConfig(filepath.Join(dir, "nothing.toml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("connections = 2\n"), 0o600))

	_, err = utils.ReadConfig(path)
	assert.Error(t, err)
}

func TestListenerTunesSockets(t *testing.T) {
	t.Parallel()

	listener, err := utils.NewListener("127.0.0.1:0", 64*1024, true, true)
	require.NoError(t, err)

	defer listener.Close()

	go func() {
		conn, err := net.Dial("tcp", listener.Addr().String())
		if err == nil {
			conn.Close()
		}
	}()

	conn, err := listener.Accept()
	require.NoError(t, err)

	defer conn.Close()

	_, ok := conn.(*net.TCPConn)
	assert.True(t, ok)
}
