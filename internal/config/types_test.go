package config_test

import (
	"testing"
	"time"

	"github.com/akab00m/zcbench/internal/config"
	"github.com/akab00m/zcbench/sendlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeBytes(t *testing.T) {
	t.Parallel()

	testData := map[string]uint{
		"800000": 800000,
		"800KB":  800 * 1024,
		"800kb":  800 * 1024,
		"1MiB":   1024 * 1024,
		"1mib":   1024 * 1024,
		"2GB":    2 * 1024 * 1024 * 1024,
	}

	for value, expected := range testData {
		param := config.TypeBytes{}

		require.NoError(t, param.Set(value), value)
		assert.Equal(t, expected, param.Get(0), value)
	}

	for _, value := range []string{"", "-1", "1XB", "KB"} {
		param := config.TypeBytes{}

		assert.Error(t, param.Set(value), value)
	}

	assert.EqualValues(t, 5, config.TypeBytes{}.Get(5))
}

func TestTypeRate(t *testing.T) {
	t.Parallel()

	param := config.TypeRate{}

	require.NoError(t, param.Set("10MB/s"))
	assert.EqualValues(t, 10*1024*1024, param.Get(0))

	require.NoError(t, param.Set("1000"))
	assert.EqualValues(t, 1000, param.Get(0))
	assert.Equal(t, "1000/s", param.String())

	assert.Error(t, param.Set("fast"))
}

func TestTypeHostPort(t *testing.T) {
	t.Parallel()

	param := config.TypeHostPort{}

	require.NoError(t, param.Set("127.0.0.1:80"))
	assert.Equal(t, "127.0.0.1", param.Host)
	assert.EqualValues(t, 80, param.Port)

	require.NoError(t, param.Set(":4000"))
	assert.Empty(t, param.Host)

	require.NoError(t, param.Set("[::1]:4000"))
	assert.Equal(t, "::1", param.Host)

	for _, value := range []string{"127.0.0.1", "127.0.0.1:0", "127.0.0.1:70000", "localhost:80"} {
		assert.Error(t, param.Set(value), value)
	}
}

func TestTypeStrategy(t *testing.T) {
	t.Parallel()

	param := config.TypeStrategy{}

	assert.Equal(t, sendlib.StrategyVector, param.Get(sendlib.StrategyVector))
	assert.Empty(t, param.String())

	require.NoError(t, param.Set("copy"))
	assert.Equal(t, sendlib.StrategyCopy, param.Get(sendlib.StrategyZeroCopy))
	assert.Equal(t, "copy", param.String())

	assert.Error(t, param.Set("splice"))
}

func TestTypeDuration(t *testing.T) {
	t.Parallel()

	param := config.TypeDuration{}

	require.NoError(t, param.Set("100MS"))
	assert.Equal(t, 100*time.Millisecond, param.Get(time.Second))

	assert.Error(t, param.Set("-1s"))
	assert.Error(t, param.Set("soon"))
}

func TestTypeConcurrency(t *testing.T) {
	t.Parallel()

	param := config.TypeConcurrency{}

	assert.EqualValues(t, 3, param.Get(3))
	require.NoError(t, param.Set("10"))
	assert.EqualValues(t, 10, param.Get(3))

	assert.Error(t, param.Set("0"))
	assert.Error(t, param.Set("-1"))
}

func TestTypeHTTPPathAndMetricPrefix(t *testing.T) {
	t.Parallel()

	path := config.TypeHTTPPath{}

	require.NoError(t, path.Set("metrics"))
	assert.Equal(t, "/metrics", path.Get("/"))

	prefix := config.TypeMetricPrefix{}

	require.NoError(t, prefix.Set("zcbench.prod"))
	assert.Error(t, prefix.Set("Zc-Bench"))
}

func TestTypeStatsdTagFormat(t *testing.T) {
	t.Parallel()

	param := config.TypeStatsdTagFormat{}

	for _, value := range []string{"influxdb", "DataDog", "graphite"} {
		assert.NoError(t, param.Set(value), value)
	}

	assert.Equal(t, "graphite", param.Get(""))
	assert.Error(t, param.Set("json"))
}

func TestTypeBool(t *testing.T) {
	t.Parallel()

	param := config.TypeBool{}

	assert.True(t, param.Get(true))
	require.NoError(t, param.Set("true"))
	assert.True(t, param.Get(false))
	assert.Error(t, param.Set("yes please"))
}
