// MIT License
//
// Copyright (c) 2025-2026 The swrcache authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package log provides the logging contract used across swrcache together
// with a zap-backed implementation.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level defines the logging verbosity.
type Level int

const (
	// DebugLevel logs everything.
	DebugLevel Level = iota
	// InfoLevel logs informational messages and above.
	InfoLevel
	// WarningLevel logs warnings and errors.
	WarningLevel
	// ErrorLevel logs errors only.
	ErrorLevel
)

// Logger defines the logging contract consumed by swrcache components.
// Any logger satisfying this interface can be injected via the configuration.
type Logger interface {
	// Debugf logs a formatted debug message.
	Debugf(format string, args ...any)
	// Infof logs a formatted informational message.
	Infof(format string, args ...any)
	// Warnf logs a formatted warning message.
	Warnf(format string, args ...any)
	// Errorf logs a formatted error message.
	Errorf(format string, args ...any)
	// Fatal logs the given arguments and terminates the process.
	Fatal(args ...any)
}

// DefaultLogger writes info-level output to stdout.
var DefaultLogger = New(InfoLevel, os.Stdout)

// DiscardLogger drops every message. Useful in tests.
var DiscardLogger = New(ErrorLevel, io.Discard)

type zapLogger struct {
	sugared *zap.SugaredLogger
}

var _ Logger = (*zapLogger)(nil)

// New creates a zap-backed Logger writing to the given sink at the given
// verbosity level.
func New(level Level, w io.Writer) Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		toZapLevel(level),
	)

	return &zapLogger{
		sugared: zap.New(core).Sugar(),
	}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarningLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debugf(format string, args ...any) {
	l.sugared.Debugf(format, args...)
}

func (l *zapLogger) Infof(format string, args ...any) {
	l.sugared.Infof(format, args...)
}

func (l *zapLogger) Warnf(format string, args ...any) {
	l.sugared.Warnf(format, args...)
}

func (l *zapLogger) Errorf(format string, args ...any) {
	l.sugared.Errorf(format, args...)
}

func (l *zapLogger) Fatal(args ...any) {
	l.sugared.Fatal(args...)
}
