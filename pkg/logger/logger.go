package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger from a level and an encoding format.
func New(level, format string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.Encoding = "console"
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.Encoding = "json"
	}

	if level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}
