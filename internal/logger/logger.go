// Package logger builds the process-wide zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the root logger.  It is a no-op until New is called so that packages
// under test never write to stderr.
var L = zap.NewNop()

// New builds a production JSON logger at the given level and installs it as L.
// Unknown level names fall back to info.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(lvl)
	l, err := config.Build()
	if err != nil {
		return nil, err
	}
	L = l
	return l, nil
}

// WithComponent returns L tagged with a component field for handlers,
// services and the queue consumer.
func WithComponent(component string) *zap.Logger {
	return L.With(zap.String("component", component))
}
