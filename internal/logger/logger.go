// Package logger builds the process-wide zap logger. Every line is a JSON
// object with a "ts" field rendered in the configured time zone.
package logger

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger writing to stdout at info level.
func New(loc *time.Location) *zap.Logger {
	return NewWithWriter(os.Stdout, loc, zapcore.InfoLevel)
}

// NewWithWriter returns a JSON logger writing to w. Tests use it to capture output.
func NewWithWriter(w io.Writer, loc *time.Location, level zapcore.Level) *zap.Logger {
	if loc == nil {
		loc = time.UTC
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}
