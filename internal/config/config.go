package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/akab00m/zcbench/sendlib"
)

type Optional struct {
	Enabled TypeBool `json:"enabled"`
}

type Config struct {
	Debug           TypeBool        `json:"debug"`
	BindTo          TypeHostPort    `json:"bindTo"`
	Strategy        TypeStrategy    `json:"strategy"`
	MessageSize     TypeBytes       `json:"messageSize"`
	Connections     TypeConcurrency `json:"connections"`
	MaxRate         TypeRate        `json:"maxRate"`
	VerifyOnRelease TypeBool        `json:"verifyOnRelease"`
	Network         struct {
		SendBufferSize TypeBytes `json:"sendBufferSize"`
		TCPFastOpen    TypeBool  `json:"tcpFastOpen"`
		TCPCork        TypeBool  `json:"tcpCork"`
	} `json:"network"`
	ZeroCopy struct {
		// IgnoreCompletions never reads the socket error queue. Sooner or
		// later sends fail with ENOBUFS.
		IgnoreCompletions TypeBool        `json:"ignoreCompletions"`
		MaxInFlight       TypeConcurrency `json:"maxInFlight"`
		PollTimeout       TypeDuration    `json:"pollTimeout"`
		ReleaseTimeout    TypeDuration    `json:"releaseTimeout"`
	} `json:"zeroCopy"`
	Stats struct {
		StatsD struct {
			Optional

			Address      TypeHostPort        `json:"address"`
			MetricPrefix TypeMetricPrefix    `json:"metricPrefix"`
			TagFormat    TypeStatsdTagFormat `json:"tagFormat"`
		} `json:"statsd"`
		Prometheus struct {
			Optional

			BindTo       TypeHostPort     `json:"bindTo"`
			HTTPPath     TypeHTTPPath     `json:"httpPath"`
			MetricPrefix TypeMetricPrefix `json:"metricPrefix"`
		} `json:"prometheus"`
	} `json:"stats"`
}

func (c *Config) Validate() error {
	if c.BindTo.Get("") == "" {
		return fmt.Errorf("incorrect bind-to parameter %s", c.BindTo.String())
	}

	if size := c.MessageSize.Get(sendlib.DefaultMessageSize); size%sendlib.SegmentCount != 0 {
		return fmt.Errorf("%w: %d is not a multiple of %d",
			sendlib.ErrMessageSizeInvalid, size, sendlib.SegmentCount)
	}

	if c.Stats.Prometheus.Enabled.Get(false) && c.Stats.Prometheus.BindTo.Get("") == "" {
		return fmt.Errorf("prometheus.bindTo is required when prometheus is enabled")
	}

	if c.Stats.StatsD.Enabled.Get(false) && c.Stats.StatsD.Address.Get("") == "" {
		return fmt.Errorf("statsd.address is required when statsd is enabled")
	}

	return nil
}

func (c *Config) String() string {
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)

	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(c); err != nil {
		return "{}"
	}

	return buf.String()
}
