package logs

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var logger *log.Logger

// InitLogger initializes the global logger. If w is nil, logs to stderr.
func InitLogger(w io.Writer, verbose bool) {
	if w == nil {
		w = os.Stderr
	}
	logger = log.NewWithOptions(w, log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: true,
		ReportCaller:    false,
	})

	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
}

// Logger returns the global logger, or a logger that discards everything
// when InitLogger has not been called.
func Logger() *log.Logger {
	if logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return logger
}

// With returns a child of the global logger carrying the given key/value pairs.
func With(keyvals ...any) *log.Logger {
	return Logger().With(keyvals...)
}

func Debug(msg string, args ...any) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}
