// Copyright 2019 Anapaya Systems
// Copyright 2026 The fwnet Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log is the structured logging facade used by all fwnet components.
// It is backed by zap. Context is passed as alternating key/value pairs:
//
//	log.Info("Frame dropped", "reason", "not_for_us", "len", len(b))
package log

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultConsoleLevel is the default log level for the console.
	DefaultConsoleLevel = "info"
	// DefaultStacktraceLevel is the default level from which on stack traces
	// are attached to log entries.
	DefaultStacktraceLevel = "none"
)

// Level of a log entry.
type Level zapcore.Level

const (
	DebugLevel = Level(zapcore.DebugLevel)
	InfoLevel  = Level(zapcore.InfoLevel)
	ErrorLevel = Level(zapcore.ErrorLevel)
)

// Logger describes the logger interface.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

// Config is the configuration for the logger.
type Config struct {
	// Console is the configuration for the console logging.
	Console ConsoleConfig `toml:"console,omitempty"`
}

// ConsoleConfig is the config for the console logger.
type ConsoleConfig struct {
	// Level of console logging (debug|info|error).
	Level string `toml:"level,omitempty"`
	// Format of the console logging (human|json).
	Format string `toml:"format,omitempty"`
	// StacktraceLevel sets from which level stacktraces are printed
	// (debug|info|error|none).
	StacktraceLevel string `toml:"stacktrace_level,omitempty"`
	// DisableCaller stops annotating logs with the calling function's file
	// name and line number.
	DisableCaller bool `toml:"disable_caller,omitempty"`
}

// InitDefaults populates unset fields in cfg to their default values (if they
// have one).
func (c *ConsoleConfig) InitDefaults() {
	if c.Level == "" {
		c.Level = DefaultConsoleLevel
	}
	if c.Format == "" {
		c.Format = "human"
	}
	if c.StacktraceLevel == "" {
		c.StacktraceLevel = DefaultStacktraceLevel
	}
}

// InitDefaults populates unset fields in cfg to their default values (if they
// have one).
func (c *Config) InitDefaults() {
	c.Console.InitDefaults()
}

// ConsoleLevel is the level of the console logger. It can be changed while
// running, its ServeHTTP method exposes it as a JSON resource.
var ConsoleLevel = zap.NewAtomicLevel()

// Setup configures the logging library with the given config.
func Setup(cfg Config, opts ...Option) error {
	cfg.InitDefaults()
	o := applyOptions(opts)

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Console.Level)); err != nil {
		return fmt.Errorf("unable to parse log.console.level %q: %w", cfg.Console.Level, err)
	}
	encoding := "console"
	switch strings.ToLower(cfg.Console.Format) {
	case "human":
	case "json":
		encoding = "json"
	default:
		return fmt.Errorf("unknown log.console.format %q", cfg.Console.Format)
	}

	zCfg := zap.NewProductionConfig()
	ConsoleLevel.SetLevel(level)
	zCfg.Level = ConsoleLevel
	zCfg.Encoding = encoding
	zCfg.DisableCaller = cfg.Console.DisableCaller
	zCfg.DisableStacktrace = true
	zCfg.Sampling = nil
	zCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zCfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	if encoding == "console" {
		zCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zOpts := o.zapOptions()
	if cfg.Console.StacktraceLevel != "none" {
		var stLevel zapcore.Level
		if err := stLevel.UnmarshalText([]byte(cfg.Console.StacktraceLevel)); err != nil {
			return fmt.Errorf("unable to parse log.console.stacktrace_level %q: %w",
				cfg.Console.StacktraceLevel, err)
		}
		zOpts = append(zOpts, zap.AddStacktrace(stLevel))
	}
	zOpts = append(zOpts, zap.AddCallerSkip(1))
	l, err := zCfg.Build(zOpts...)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	zap.ReplaceGlobals(l)
	return nil
}

// HandlePanic catches panics and logs them. It must be deferred at the top of
// every goroutine.
func HandlePanic() {
	if msg := recover(); msg != nil {
		zap.L().Error("Panic", zap.Any("msg", msg), zap.ByteString("stack", debug.Stack()))
		zap.L().Error("=====================> Service panicked!")
		Flush()
		os.Exit(255)
	}
}

// Flush writes the logs to the underlying buffer.
func Flush() {
	_ = zap.L().Sync()
}

// Discard sets the logger up to discard all log entries. This is useful for
// testing.
func Discard() {
	zap.ReplaceGlobals(zap.NewNop())
}

// Root returns the root logger. It's a logger without any context.
func Root() Logger {
	return &logger{logger: zap.L()}
}

// New creates a logger with the given context.
func New(ctx ...any) Logger {
	return &logger{logger: zap.L().With(convertCtx(ctx)...)}
}

// Debug logs at debug level.
func Debug(msg string, ctx ...any) {
	zap.L().Debug(msg, convertCtx(ctx)...)
}

// Info logs at info level.
func Info(msg string, ctx ...any) {
	zap.L().Info(msg, convertCtx(ctx)...)
}

// Error logs at error level.
func Error(msg string, ctx ...any) {
	zap.L().Error(msg, convertCtx(ctx)...)
}

// Enabled reports whether the root logger emits entries of the given level.
func Enabled(lvl Level) bool {
	return zap.L().Core().Enabled(zapcore.Level(lvl))
}

type logger struct {
	logger *zap.Logger
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(zapcore.Level(lvl))
}

// SafeDebug logs to l only if l is not nil.
func SafeDebug(l Logger, msg string, ctx ...any) {
	if l == nil {
		return
	}
	l.Debug(msg, ctx...)
}

// SafeInfo logs to l only if l is not nil.
func SafeInfo(l Logger, msg string, ctx ...any) {
	if l == nil {
		return
	}
	l.Info(msg, ctx...)
}

// SafeError logs to l only if l is not nil.
func SafeError(l Logger, msg string, ctx ...any) {
	if l == nil {
		return
	}
	l.Error(msg, ctx...)
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(ctx[i]), ctx[i+1]))
	}
	return fields
}
