// Package logging wraps charmbracelet/log into the structured logger used
// by the Mediator and cmd/audiostretch for progress and debug output.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the structured logger passed to the Mediator.
type Logger = log.Logger

// New returns a Logger writing to w with the given debug gate. When debug
// is false, only info-and-above messages are emitted.
func New(w io.Writer, debug bool) *Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return logger
}

// Default returns a Logger writing to stderr at info level.
func Default() *Logger {
	return New(os.Stderr, false)
}
