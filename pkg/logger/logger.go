// Package logger provides opinionated logging for the interview service and CLI.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	output io.Writer
	json   bool
}

// Option customizes the logger built by NewLogger.
type Option func(*options)

// WithOutput sends log lines to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithJSON switches from the colored console encoder to JSON lines.
func WithJSON() Option {
	return func(o *options) {
		o.json = true
	}
}

func NewLogger(debug bool, opts ...Option) *zap.Logger {
	o := &options{output: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if o.json {
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(o.output), level)

	return zap.New(core, zap.AddCaller())
}

// Truncate shortens s for log previews, flattening newlines.
func Truncate(s string, maxLen int) string {
	flat := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' {
			r = ' '
		}
		flat = append(flat, r)
	}
	if len(flat) <= maxLen {
		return string(flat)
	}
	return string(flat[:maxLen]) + "..."
}
