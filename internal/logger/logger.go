// Package logger provides the structured logging used throughout the restore
// session engine. It wraps the standard library's log/slog behind a small
// package-level API so call sites don't have to thread a *slog.Logger through
// every constructor.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"log/slog"
)

// Level represents a logging verbosity level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Config holds logger configuration, loaded from pkg/config.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	currentLevel  atomic.Int32
	currentFormat atomic.Value // "text" or "json"

	mu       sync.RWMutex
	handler  slog.Handler
	slogger  *slog.Logger
	output   io.Writer = os.Stdout
	useColor bool      = true
)

func init() {
	currentLevel.Store(int32(LevelInfo))
	currentFormat.Store("text")
	if f, ok := output.(*os.File); ok {
		useColor = isTerminal(f)
	}
	reconfigure()
}

func toSlogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func reconfigure() {
	mu.Lock()
	defer mu.Unlock()

	level := Level(currentLevel.Load())
	format, _ := currentFormat.Load().(string)

	levelVar := new(slog.LevelVar)
	levelVar.Set(toSlogLevel(level))
	opts := &slog.HandlerOptions{Level: levelVar}

	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = newColorTextHandler(output, opts, useColor)
	}
	slogger = slog.New(handler)
}

// Init configures the package-level logger. Output may be "stdout", "stderr",
// or a file path; an empty Output leaves the current destination untouched.
func Init(cfg Config) error {
	if cfg.Output != "" {
		var newOutput io.Writer
		var newUseColor bool
		switch strings.ToLower(cfg.Output) {
		case "stdout", "":
			newOutput, newUseColor = os.Stdout, isTerminal(os.Stdout)
		case "stderr":
			newOutput, newUseColor = os.Stderr, isTerminal(os.Stderr)
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file %q: %w", cfg.Output, err)
			}
			newOutput, newUseColor = f, false
		}
		mu.Lock()
		output, useColor = newOutput, newUseColor
		mu.Unlock()
	}

	if cfg.Level != "" {
		SetLevel(cfg.Level)
	} else {
		reconfigure()
	}
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}
	return nil
}

// SetLevel parses a level name (case-insensitive) and reconfigures the logger.
func SetLevel(name string) {
	var l Level
	switch strings.ToUpper(name) {
	case "DEBUG":
		l = LevelDebug
	case "WARN", "WARNING":
		l = LevelWarn
	case "ERROR":
		l = LevelError
	default:
		l = LevelInfo
	}
	currentLevel.Store(int32(l))
	reconfigure()
}

// SetFormat switches between "text" and "json" output.
func SetFormat(format string) {
	currentFormat.Store(strings.ToLower(format))
	reconfigure()
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// With returns a logger with the given key/value pairs attached, for call
// sites that log more than once within the same scope (e.g. a data-request
// handler logging entry and exit).
func With(args ...any) *slog.Logger { return get().With(args...) }
