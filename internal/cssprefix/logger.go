package icp

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewColorLogger returns a colored console logger labeled with name.
func NewColorLogger(name string) Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Named(name).Sugar()
}
