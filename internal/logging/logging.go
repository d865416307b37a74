package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const serviceName = "balloon-scene"

func Setup(level string) {
	SetupWithWriter(level, os.Stdout)
}

// SetupWithWriter installs a JSON slog handler writing to w as the default logger.
func SetupWithWriter(level string, w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})

	logger := slog.New(handler).With("service", serviceName)
	slog.SetDefault(logger)
	return logger
}

func ParseLevel(level string) slog.Level {
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

func Fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
