package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a named sugared logger for command and tooling code. The codec
// services themselves stay logger-free; observability hooks carry events out
// to callers that want them logged.
func New(name string) *zap.SugaredLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	logger, err := config.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger.Sugar().Named(name)
}
