// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options configure Setup.
type Options struct {
	Level  string
	Format string
	// File receives log output when Output is nil. The TUI owns the terminal,
	// so an empty File with a nil Output discards everything.
	File   string
	Output io.Writer
}

// Setup returns a logger configured from opts and a cleanup func that closes
// the log file, if one was opened.
func Setup(opts Options) (*logrus.Logger, func(), error) {
	log := logrus.New()
	noop := func() {}

	level := logrus.InfoLevel
	if v := strings.TrimSpace(opts.Level); v != "" {
		parsed, err := logrus.ParseLevel(v)
		if err != nil {
			return nil, noop, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}
	log.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{DisableColors: opts.Output == nil, FullTimestamp: true})
	}

	if opts.Output != nil {
		log.SetOutput(opts.Output)
		return log, noop, nil
	}
	if strings.TrimSpace(opts.File) == "" {
		log.SetOutput(io.Discard)
		return log, noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, noop, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, noop, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, func() { _ = f.Close() }, nil
}
