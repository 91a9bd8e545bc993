package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger: colored console output in development,
// JSON everywhere else. The returned func flushes buffered entries.
func New(development bool) (*zap.Logger, func() error, error) {
	var (
		log *zap.Logger
		err error
	)
	if development {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		log, err = config.Build()
	} else {
		config := zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		log, err = config.Build()
	}
	if err != nil {
		return nil, nil, err
	}
	return log.Named("api"), log.Sync, nil
}
