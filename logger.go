package cpfold

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with the field names used across estimator runs.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.  A nil handler logs
// text at info level to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger writing human readable lines at level.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

func (l *Logger) WithState(state int) *Logger {
	return &Logger{Logger: l.Logger.With("state", state)}
}

func (l *Logger) WithWorker(worker int) *Logger {
	return &Logger{Logger: l.Logger.With("worker", worker)}
}

func (l *Logger) WithRun(run string) *Logger {
	return &Logger{Logger: l.Logger.With("run", run)}
}
