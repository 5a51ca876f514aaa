// Package logging provides zerolog construction and context plumbing for
// carbonledger. All components log through a context-carried logger so that
// run-scoped fields (run_id, source_file) follow the calculation everywhere.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name (trace, debug, info, warn, error).
	// Unparseable values fall back to info.
	Level string

	// Format is "console" for human-readable output or "json" for
	// structured output. Anything else is treated as json.
	Format string

	// File, when non-empty, duplicates log output to the named file in
	// append mode alongside stderr.
	File string
}

// Result holds a constructed logger plus the state needed to clean it up.
type Result struct {
	Logger    zerolog.Logger
	UsingFile bool
	FilePath  string

	file *os.File
}

// Close releases the log file handle, if any.
func (r *Result) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// NewLogger builds a logger from cfg. Console format writes human-readable
// lines to stderr; json format writes raw zerolog JSON. When cfg.File is set
// and the file can be opened, output is mirrored there; open failures fall
// back to stderr-only logging rather than failing the command.
func NewLogger(cfg Config) Result {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var console io.Writer = os.Stderr
	if cfg.Format == "console" {
		console = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	result := Result{}
	writers := []io.Writer{console}

	if cfg.File != "" {
		logFile, fileErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if fileErr == nil {
			result.file = logFile
			result.UsingFile = true
			result.FilePath = cfg.File
			writers = append(writers, logFile)
		}
	}

	result.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return result
}

// ComponentLogger returns a child logger tagged with a component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// FromContext returns the logger carried by ctx, or the global logger when
// ctx carries none. Callers attach a logger with zerolog's
// Logger.WithContext before fanning out work.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return log.Logger
	}
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return log.Logger
}
