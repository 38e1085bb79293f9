// Package logger provides the conditional debug output shared by all commands.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger prints debug output if enabled. Copies share one lock, so a Logger
// can be used from concurrent walk callbacks.
type Logger struct {
	enabled bool
	writer  io.Writer
	mu      *sync.Mutex
}

// New creates a logger writing to stderr.
func New(enabled bool) Logger {
	return NewWithWriter(enabled, os.Stderr)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(enabled bool, w io.Writer) Logger {
	return Logger{enabled: enabled, writer: w, mu: &sync.Mutex{}}
}

// Enabled reports whether debug output is printed.
func (l Logger) Enabled() bool {
	return l.enabled
}

// Printf prints a "[debug]: " prefixed line if logging is enabled.
// A trailing newline is added when missing.
func (l Logger) Printf(format string, args ...any) {
	if !l.enabled || l.writer == nil {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}

	l.write("[debug]: " + msg)
}

// Errorf prints a line unconditionally. Used for failures the user must see
// even without --debug.
func (l Logger) Errorf(format string, args ...any) {
	if l.writer == nil {
		return
	}

	l.write(fmt.Sprintf(format+"\n", args...))
}

func (l Logger) write(msg string) {
	if l.mu != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
	}

	_, _ = io.WriteString(l.writer, msg)
}
