package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap logger for the given environment. "local" gets a
// development logger at debug level, "development" a development logger at
// info level and everything else the production logger.
func New(env string) (*zap.Logger, error) {
	switch env {
	case "local":
		return zap.NewDevelopment()
	case "development":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		return cfg.Build()
	default:
		return zap.NewProduction()
	}
}
