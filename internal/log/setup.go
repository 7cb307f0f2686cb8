package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/simplekeystore/internal/config"
	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", model.ErrConfiguration, level)
	}
	return l, nil
}

// New builds the redacting logger described by cfg. Without a log file,
// records go to fallback as text. With one, they go to the rotating file as
// JSON. The returned closer releases the file and is never nil.
func New(cfg config.LoggingConfig, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.File == "" {
		handler := slog.NewTextHandler(fallback, opts)
		return slog.New(NewRedactingHandler(handler)), nopCloser{}, nil
	}

	writer, err := NewRotatingWriter(RotationConfig{
		File:      cfg.File,
		MaxSizeMB: cfg.MaxSizeMB,
		MaxFiles:  cfg.MaxFiles,
	})
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(writer, opts)
	return slog.New(NewRedactingHandler(handler)), writer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
