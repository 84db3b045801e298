package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// teeWriter duplicates log output to an optional log file in addition to
// the primary target.
type teeWriter struct {
	mu     sync.Mutex
	target io.Writer
	file   *os.File
}

func (w *teeWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	if w.target != nil {
		if _, err := w.target.Write(p); err != nil {
			firstErr = err
		}
	}
	if w.file != nil {
		if _, err := w.file.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return len(p), firstErr
}

var writer *teeWriter

// Init initializes the logging system and installs the default slog logger.
// An empty logFilePath disables file logging.
func Init(levelStr, formatStr, logFilePath string) error {
	writer = &teeWriter{target: os.Stderr}

	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		writer.file = file
	}

	var level slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(formatStr) == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// SetOutput redirects the primary log target (the file, if any, keeps
// receiving output).
func SetOutput(newTarget io.Writer) {
	writer.mu.Lock()
	defer writer.mu.Unlock()
	writer.target = newTarget
}

// Close closes the log file if one was opened.
func Close() error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.file != nil {
		err := writer.file.Close()
		writer.file = nil
		return err
	}
	return nil
}
