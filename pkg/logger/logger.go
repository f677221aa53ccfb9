package logx

import (
	"io"
	"os"

	"github.com/dining-concierge/server/internal/core"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
}

type LoggerOpts struct {
	Environment core.Environment
	// Output overrides the destination; nil means stderr.
	Output io.Writer
	// Service is attached to every event when set.
	Service string
}

func safe(otps ...LoggerOpts) *LoggerOpts {
	if len(otps) == 0 {
		return DefaultLoggerOpts
	}
	return &otps[0]
}

func Init(otps ...LoggerOpts) {
	o := safe(otps...)
	out := o.Output
	if out == nil {
		out = os.Stderr
	}

	var ctx zerolog.Context
	if o.Environment.IsProduction() {
		ctx = zerolog.New(out).With().Timestamp()
	} else {
		ctx = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Caller()
	}
	if o.Service != "" {
		ctx = ctx.Str("service", o.Service)
	}
	log.Logger = ctx.Logger()

	if o.Environment.IsProduction() {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	}
}

// Discard silences all logging; used by tests.
func Discard() {
	log.Logger = zerolog.Nop()
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Panic() *zerolog.Event {
	return log.Panic()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
