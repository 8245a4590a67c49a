package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogConfig selects where and how the process logs.
type LogConfig struct {
	// Output defaults to os.Stdout.
	Output io.Writer
	// Level is debug, info, warn or error. Anything else means info.
	Level string
	// Format is json or text. Anything else means text.
	Format string
}

// InitLogger builds the process logger and installs it as slog's default,
// so packages that log through slog directly share its handler.
func InitLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
