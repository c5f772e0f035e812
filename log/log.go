//
// Tencent is pleased to support the open source community by making trpc-docqa-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docqa-go is licensed under the Apache License Version 2.0.
//
//

// Package log provides the process-wide logger used by docqa.
//
// Log lines go to stderr so that the text printed by the CLI on stdout
// (answers, converted pages, retrieved chunks) stays clean for piping.
package log

import (
	"context"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level names accepted by SetLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
	LevelFatal = "fatal"
)

// Output formats accepted by SetFormat.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Logger is the logging surface used throughout trpc-docqa-go.
// *zap.SugaredLogger satisfies it.
type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
}

var (
	level            = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	output io.Writer = os.Stderr
	format           = FormatConsole
)

var (
	// Default backs the package level helpers. Replace it to capture logs.
	Default Logger = build(1)
	// ContextDefault backs the *Context helpers. Both sit one frame above
	// the caller, so callers are reported correctly with the same skip.
	ContextDefault Logger = build(1)
)

func build(skip int) *zap.SugaredLogger {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "lvl",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	var enc zapcore.Encoder
	if format == FormatJSON {
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(output), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(skip)).Sugar()
}

func rebuild() {
	Default = build(1)
	ContextDefault = build(1)
}

// SetOutput redirects Default and ContextDefault to w.
func SetOutput(w io.Writer) {
	output = w
	rebuild()
}

// SetFormat switches between FormatConsole and FormatJSON. Unknown values
// select the console format.
func SetFormat(f string) {
	if strings.EqualFold(strings.TrimSpace(f), FormatJSON) {
		format = FormatJSON
	} else {
		format = FormatConsole
	}
	rebuild()
}

// SetLevel sets the minimum level, matched case-insensitively.
// Unknown names select info.
func SetLevel(name string) {
	l, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || l < zapcore.DebugLevel || l > zapcore.FatalLevel {
		l = zapcore.InfoLevel
	}
	level.SetLevel(l)
}

// Debug logs at debug level in the manner of fmt.Print.
func Debug(args ...any) { Default.Debug(args...) }

// Debugf logs at debug level in the manner of fmt.Printf.
func Debugf(format string, args ...any) { Default.Debugf(format, args...) }

// Info logs at info level in the manner of fmt.Print.
func Info(args ...any) { Default.Info(args...) }

// Infof logs at info level in the manner of fmt.Printf.
func Infof(format string, args ...any) { Default.Infof(format, args...) }

// Warn logs at warn level in the manner of fmt.Print.
func Warn(args ...any) { Default.Warn(args...) }

// Warnf logs at warn level in the manner of fmt.Printf.
func Warnf(format string, args ...any) { Default.Warnf(format, args...) }

// Error logs at error level in the manner of fmt.Print.
func Error(args ...any) { Default.Error(args...) }

// Errorf logs at error level in the manner of fmt.Printf.
func Errorf(format string, args ...any) { Default.Errorf(format, args...) }

// Fatal logs at fatal level and exits.
func Fatal(args ...any) { Default.Fatal(args...) }

// Fatalf logs at fatal level and exits.
func Fatalf(format string, args ...any) { Default.Fatalf(format, args...) }

// The *Context helpers take the request context so that callers in traced
// code paths can be switched to a context-aware logger by reassignment.
var (
	DebugfContext = func(_ context.Context, format string, args ...any) {
		ContextDefault.Debugf(format, args...)
	}
	InfofContext = func(_ context.Context, format string, args ...any) {
		ContextDefault.Infof(format, args...)
	}
	WarnfContext = func(_ context.Context, format string, args ...any) {
		ContextDefault.Warnf(format, args...)
	}
	ErrorfContext = func(_ context.Context, format string, args ...any) {
		ContextDefault.Errorf(format, args...)
	}
)
