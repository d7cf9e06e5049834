//go:build logless

package logging

// Default is the no-op logger used in logless builds, matching
// pkg/core/logger.EmptyLog in the teacher: every call compiles away to
// nothing of consequence, for targets where the zerolog dependency and its
// formatting cost are not affordable.
var Default Logger = noopLogger{}

type noopLogger struct{}

func New() Logger { return noopLogger{} }

func (noopLogger) Debug(string, ...any)        {}
func (noopLogger) Info(string, ...any)         {}
func (noopLogger) Warn(string, ...any)         {}
func (noopLogger) Error(string, error, ...any) {}
