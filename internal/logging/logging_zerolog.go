//go:build !logless

package logging

import (
	"os"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// Default is the process-wide logger used when a component isn't given one
// explicitly.
var Default Logger = New()

type zerologLogger struct {
	zl zerolog.Logger
}

// New builds the real zerolog-backed logger: console writer to stderr with
// caller info, matching pkg/logger.Log in the teacher.
func New() Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Caller().Logger()
	return zerologLogger{zl: zl}
}

func (l zerologLogger) event(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

func (l zerologLogger) Debug(msg string, kv ...any) { l.event(l.zl.Debug(), msg, kv) }
func (l zerologLogger) Info(msg string, kv ...any)  { l.event(l.zl.Info(), msg, kv) }
func (l zerologLogger) Warn(msg string, kv ...any)  { l.event(l.zl.Warn(), msg, kv) }
func (l zerologLogger) Error(msg string, err error, kv ...any) {
	l.event(l.zl.Error().AnErr("error", err), msg, kv)
}
