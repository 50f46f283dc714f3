package logger

import (
	"github.com/akab00m/zcbench/sendlib"
	"github.com/rs/zerolog"
)

// NewNoopLogger returns a logger which discards all events.
func NewNoopLogger() sendlib.Logger {
	return NewZeroLogger(zerolog.Nop())
}
