// Package logger contains implementations of [duplib.Logger].
package logger

import (
	"fmt"

	"github.com/akab00m/dupclean/duplib"
	"github.com/rs/zerolog"
)

type zeroLogContext struct {
	name string
	log  zerolog.Logger
}

func (z zeroLogContext) Named(name string) duplib.Logger {
	if z.name != "" {
		name = z.name + "." + name
	}

	return zeroLogContext{
		name: name,
		log:  z.log.With().Str("logger", name).Logger(),
	}
}

func (z zeroLogContext) BindInt(name string, value int) duplib.Logger {
	return zeroLogContext{
		name: z.name,
		log:  z.log.With().Int(name, value).Logger(),
	}
}

func (z zeroLogContext) BindInt64(name string, value int64) duplib.Logger {
	return zeroLogContext{
		name: z.name,
		log:  z.log.With().Int64(name, value).Logger(),
	}
}

func (z zeroLogContext) BindStr(name, value string) duplib.Logger {
	return zeroLogContext{
		name: z.name,
		log:  z.log.With().Str(name, value).Logger(),
	}
}

func (z zeroLogContext) Printf(format string, args ...interface{}) {
	z.Debug(fmt.Sprintf(format, args...))
}

func (z zeroLogContext) Info(msg string) {
	z.InfoError(msg, nil)
}

func (z zeroLogContext) InfoError(msg string, err error) {
	z.emit(z.log.Info(), msg, err)
}

func (z zeroLogContext) Warning(msg string) {
	z.WarningError(msg, nil)
}

func (z zeroLogContext) WarningError(msg string, err error) {
	z.emit(z.log.Warn(), msg, err)
}

func (z zeroLogContext) Debug(msg string) {
	z.DebugError(msg, nil)
}

func (z zeroLogContext) DebugError(msg string, err error) {
	z.emit(z.log.Debug(), msg, err)
}

func (z zeroLogContext) emit(evt *zerolog.Event, msg string, err error) {
	if err != nil {
		evt = evt.Err(err)
	}

	evt.Msg(msg)
}

// NewZeroLogger returns a logger which is using rs/zerolog library.
func NewZeroLogger(log zerolog.Logger) duplib.Logger {
	return zeroLogContext{
		log: log,
	}
}
