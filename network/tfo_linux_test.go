//go:build linux

package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTFOMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	testData := map[string]int{
		"0\n":    TFOModeDisabled,
		"1\n":    TFOModeClientOnly,
		"2":      TFOModeServerOnly,
		"3\n":    TFOModeClientServer,
		"1027\n": TFOModeClientServer,
		"junk":   TFOModeDisabled,
	}

	for content, expected := range testData {
		path := filepath.Join(dir, "tcp_fastopen")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		assert.Equal(t, expected, readTFOMode(path), content)
	}

	assert.Equal(t, TFOModeDisabled, readTFOMode(filepath.Join(dir, "nothing")))
}

func TestTFOModeIsConsistent(t *testing.T) {
	t.Parallel()

	mode := GetTFOMode()

	assert.Equal(t, mode > TFOModeDisabled, IsTFOSupported())
	assert.Equal(t, mode&TFOModeServerOnly != 0, IsTFOServerEnabled())
	assert.Equal(t, mode&TFOModeClientOnly != 0, IsTFOClientEnabled())
}

func TestDefaultTFOConfig(t *testing.T) {
	t.Parallel()

	config := DefaultTFOConfig()

	assert.True(t, config.Enabled)
	assert.Equal(t, DefaultTFOQueueLen, config.QueueLen)
	assert.True(t, config.Fallback)
}

func TestListenTFO(t *testing.T) {
	t.Parallel()

	for _, config := range []TFOConfig{{}, DefaultTFOConfig(), {Enabled: true, Fallback: true}} {
		listener, err := ListenTFO("tcp", "127.0.0.1:0", config)
		require.NoError(t, err)

		assert.NotNil(t, listener.Addr())
		assert.NoError(t, listener.Close())
	}
}
