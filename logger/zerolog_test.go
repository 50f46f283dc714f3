package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/akab00m/zcbench/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type ZeroLoggerTestSuite struct {
	suite.Suite

	buf *bytes.Buffer
}

func (suite *ZeroLoggerTestSuite) SetupTest() {
	suite.buf = &bytes.Buffer{}
}

func (suite *ZeroLoggerTestSuite) records(level zerolog.Level) []map[string]interface{} {
	log := zerolog.New(suite.buf).Level(level)

	logger.NewZeroLogger(log).
		Named("server").
		BindStr("strategy", "zerocopy").
		BindInt("connections", 2).
		WarningError("cannot build a message", errors.New("no memory"))

	var rv []map[string]interface{}

	for _, line := range strings.Split(strings.TrimSpace(suite.buf.String()), "\n") {
		if line == "" {
			continue
		}

		record := map[string]interface{}{}
		suite.Require().NoError(json.Unmarshal([]byte(line), &record))

		rv = append(rv, record)
	}

	return rv
}

func (suite *ZeroLoggerTestSuite) TestFields() {
	records := suite.records(zerolog.DebugLevel)

	suite.Require().Len(records, 1)
	suite.Equal("server", records[0]["logger"])
	suite.Equal("zerocopy", records[0]["strategy"])
	suite.EqualValues(2, records[0]["connections"])
	suite.Equal("no memory", records[0]["error"])
	suite.Equal("warn", records[0]["level"])
	suite.Equal("cannot build a message", records[0]["message"])
}

func (suite *ZeroLoggerTestSuite) TestLevel() {
	suite.Empty(suite.records(zerolog.ErrorLevel))
}

func TestZeroLogger(t *testing.T) {
	t.Parallel()
	suite.Run(t, &ZeroLoggerTestSuite{})
}

func TestNoopLogger(t *testing.T) {
	t.Parallel()

	log := logger.NewNoopLogger()

	log.Named("x").BindStr("a", "b").Info("message")
	log.Printf("%d", 1)
}
