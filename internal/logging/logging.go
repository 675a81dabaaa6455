// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to w (stderr when nil) at Info, or
// at Debug with caller annotations when debug is set.
func New(debug bool, w io.Writer) *zap.Logger {
	if w == nil {
		w = os.Stderr
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zapcore.InfoLevel
	var opts []zap.Option
	if debug {
		level = zapcore.DebugLevel
		opts = append(opts, zap.AddCaller())
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core, opts...)
}
