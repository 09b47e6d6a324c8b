// Package logger constructs the process-wide zerolog logger.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to stderr with millisecond
// timestamps.
func New(service string) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	return zerolog.New(output).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
