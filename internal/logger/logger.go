// Package logger provides verbose logging for the coursekit CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to show what each extraction stage is doing.
// With the json format every line is a zerolog event instead.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	format            = FormatText
	zl                = newZerolog(os.Stderr)
)

func newZerolog(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// Setup selects the output format: text (alias console) or json.
func Setup(f string) error {
	f = strings.ToLower(strings.TrimSpace(f))
	switch f {
	case "", FormatText, "console":
		f = FormatText
	case FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", f)
	}

	mu.Lock()
	defer mu.Unlock()
	format = f
	return nil
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	zl = newZerolog(w)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(zerolog.DebugLevel, "[DEBUG] ", true, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if format == FormatJSON {
		zl.Debug().Str("section", name).Send()
		return
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit(zerolog.InfoLevel, "[INFO] ", true, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	emit(zerolog.WarnLevel, "[WARN] ", true, format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	emit(zerolog.ErrorLevel, "[ERROR] ", false, format, args...)
}

func emit(level zerolog.Level, prefix string, gated bool, msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	if format == FormatJSON {
		zl.WithLevel(level).Msgf(msg, args...)
		return
	}
	fmt.Fprintf(output, prefix+msg+"\n", args...)
}
