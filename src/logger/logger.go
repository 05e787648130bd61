// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/mcp-upgrade-gateway/src/internal/helper/gc"
)

// Logger defines the interface for logging operations.
// It provides methods for informational and error output.
//
// The gateway, the dispatcher and the CLI all log through this interface, so the
// same code runs with human-readable output in a terminal and JSON lines in a
// deployment.
type Logger interface {
	// Printf formats and prints an informational message.
	Printf(format string, v ...any)
	// Println prints an informational message with a newline.
	Println(v ...any)
	// Errorf formats and prints an error message.
	Errorf(format string, v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
// This is suitable for user-facing CLI output.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stdout, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// Errorf prints a message prefixed with "error: ".
func (c *CLILogger) Errorf(format string, v ...any) { c.logger.Printf("error: "+format, v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// Level is the severity recorded on a JSON log line.
type Level string

const (
	// LevelInfo marks routine delivery events.
	LevelInfo Level = "info"
	// LevelError marks failures.
	LevelError Level = "error"
)

// JSONLogger implements Logger as one JSON object per line:
//
//	{"level":"info","time":"2026-01-02T15:04:05.000Z","component":"dispatcher","message":"..."}
//
// It can be silenced entirely, which keeps tests and embedded use quiet.
//
// JSONLogger is safe for concurrent use by multiple goroutines. Children created
// with [JSONLogger.With] share the parent's writer and lock.
type JSONLogger struct {
	out       *sharedWriter
	component string
	silent    bool
	now       func() time.Time
}

// sharedWriter serializes writes from a logger and all of its children.
type sharedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJSONLogger creates a new JSON line logger.
// A nil writer discards output. When silent is true nothing is written.
func NewJSONLogger(writer io.Writer, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		out:    &sharedWriter{w: writer},
		silent: silent,
		now:    time.Now,
	}
}

// With returns a child logger tagging every line with the given component.
func (j *JSONLogger) With(component string) *JSONLogger {
	child := *j
	child.component = component
	return &child
}

// Printf formats and logs an informational line.
func (j *JSONLogger) Printf(format string, v ...any) {
	j.write(LevelInfo, fmt.Sprintf(format, v...))
}

// Println logs an informational line built with fmt.Sprint semantics.
func (j *JSONLogger) Println(v ...any) {
	j.write(LevelInfo, fmt.Sprint(v...))
}

// Errorf formats and logs an error line.
func (j *JSONLogger) Errorf(format string, v ...any) {
	j.write(LevelError, fmt.Sprintf(format, v...))
}

// SetOutput sets the output destination, shared with any children.
// A nil writer discards output.
func (j *JSONLogger) SetOutput(w io.Writer) {
	j.out.mu.Lock()
	defer j.out.mu.Unlock()

	if w == nil {
		j.out.w = io.Discard
	} else {
		j.out.w = w
	}
}

func (j *JSONLogger) write(level Level, msg string) {
	if j.silent {
		return
	}

	buf := gc.Default.Get()
	defer gc.Default.Put(buf)

	buf.WriteString(`{"level":`)
	writeJSONString(buf, string(level))
	buf.WriteString(`,"time":`)
	writeJSONString(buf, j.now().UTC().Format(time.RFC3339Nano))
	if j.component != "" {
		buf.WriteString(`,"component":`)
		writeJSONString(buf, j.component)
	}
	buf.WriteString(`,"message":`)
	writeJSONString(buf, msg)
	buf.WriteString("}\n")

	j.out.mu.Lock()
	_, _ = j.out.w.Write(buf.Bytes())
	j.out.mu.Unlock()
}

// writeJSONString appends s as a quoted JSON string.
func writeJSONString(buf gc.Buffer, s string) {
	quoted, _ := json.Marshal(s)
	buf.Write(quoted)
}
