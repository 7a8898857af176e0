// Package bootstrap builds process-wide infrastructure such as the logger.
package bootstrap

import (
	"io"
	"log"
	"log/slog"
	"os"
)

// NewLogger creates a slog.Logger appending text records to logFile.
// If the file cannot be opened the logger writes to stderr instead, so a
// broken log sink never stops the application. The returned func closes the file.
func NewLogger(level, logFile string) (*slog.Logger, func() error) {
	logLevel := toLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}

	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("WARN: cannot open log file '%s', logging to stderr: %v", logFile, err)
	} else {
		w = f
		closeFn = f.Close
	}

	logHandler := slog.NewTextHandler(failSafeWriter{w: w}, loggerOpts)
	return slog.New(logHandler), closeFn
}

// failSafeWriter drops write errors, losing a log line is preferable to failing the caller.
type failSafeWriter struct {
	w io.Writer
}

func (f failSafeWriter) Write(p []byte) (int, error) {
	_, _ = f.w.Write(p)
	return len(p), nil
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
