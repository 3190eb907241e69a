package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const diagnosticStream = "stderr"

// NewApplicationLogger constructs a zap logger configured for human-readable
// console output on the diagnostic stream, emitting entries at level or above.
func NewApplicationLogger(level zapcore.Level) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = "console"
	config.OutputPaths = []string{diagnosticStream}
	config.ErrorOutputPaths = []string{diagnosticStream}
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.Sampling = nil
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}
