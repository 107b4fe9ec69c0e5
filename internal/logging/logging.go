// Package logging configures the standard logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	File       string // Empty disables file logging
	MaxSizeMB  int
	MaxBackups int
	Console    io.Writer // Defaults to os.Stderr
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup points the standard logger at the console and, when Options.File is
// set, at a size-rotated log file as well. The returned closer releases the
// log file and must be called before exit.
func Setup(opts Options) (io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	if opts.File == "" {
		log.SetOutput(console)
		return nopCloser{}, nil
	}

	if dir := filepath.Dir(opts.File); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	rotating := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	log.SetOutput(io.MultiWriter(console, rotating))
	log.Printf("[LOG] Writing logs to %s", opts.File)

	return rotating, nil
}
