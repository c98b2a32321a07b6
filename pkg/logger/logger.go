// Package logger holds the zerolog logger shared by every component of the
// booking API.
//
// cmd/server configures it once from LOG_LEVEL and ENV. Services and
// middleware take a zerolog.Logger in their constructors, normally obtained
// through Component so each line names the part of the system that wrote it.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options are read by the first Init call only.
type Options struct {
	// Level names the minimum level written; unknown names mean info.
	Level string
	// Pretty switches from JSON lines to zerolog's console format.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service, when set, is stamped on every entry as "service".
	Service string
}

var levels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

var (
	mu     sync.Mutex
	shared *zerolog.Logger
)

// Init configures the shared logger and returns it. Later calls return the
// logger built by the first one and ignore their options.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if shared == nil {
		l := build(opts)
		shared = &l
	}
	return *shared
}

// Get returns the shared logger. It panics when Init has not run.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if shared == nil {
		panic("logger: Get() called before Init()")
	}
	return *shared
}

// Component tags the shared logger with the name of the caller's subsystem.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the shared logger so tests can Init again with new options.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	shared = nil
}

func build(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	ctx := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Logger()
}

func parseLevel(s string) zerolog.Level {
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl
	}
	return zerolog.InfoLevel
}
