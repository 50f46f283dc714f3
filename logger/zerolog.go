// Package logger has implementations of sendlib.Logger.
package logger

import (
	"fmt"

	"github.com/akab00m/zcbench/sendlib"
	"github.com/rs/zerolog"
)

type zeroLogContext struct {
	log zerolog.Logger
}

func (z zeroLogContext) Named(name string) sendlib.Logger {
	return zeroLogContext{
		log: z.log.With().Str("logger", name).Logger(),
	}
}

func (z zeroLogContext) BindInt(name string, value int) sendlib.Logger {
	return zeroLogContext{
		log: z.log.With().Int(name, value).Logger(),
	}
}

func (z zeroLogContext) BindStr(name, value string) sendlib.Logger {
	return zeroLogContext{
		log: z.log.With().Str(name, value).Logger(),
	}
}

func (z zeroLogContext) Printf(format string, args ...interface{}) {
	z.Debug(fmt.Sprintf(format, args...))
}

func (z zeroLogContext) Info(msg string) {
	z.log.Info().Msg(msg)
}

func (z zeroLogContext) Warning(msg string) {
	z.log.Warn().Msg(msg)
}

func (z zeroLogContext) Debug(msg string) {
	z.log.Debug().Msg(msg)
}

func (z zeroLogContext) InfoError(msg string, err error) {
	z.log.Info().Err(err).Msg(msg)
}

func (z zeroLogContext) WarningError(msg string, err error) {
	z.log.Warn().Err(err).Msg(msg)
}

func (z zeroLogContext) DebugError(msg string, err error) {
	z.log.Debug().Err(err).Msg(msg)
}

// NewZeroLogger returns a logger which uses zerolog.Logger.
func NewZeroLogger(log zerolog.Logger) sendlib.Logger {
	return zeroLogContext{
		log: log,
	}
}
