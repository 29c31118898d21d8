package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// parseLogLevel converts a config string to a zap level.
func parseLogLevel(level string) (zapcore.Level, error) {
	level = strings.ToLower(level)

	switch level {
	case "warning":
		level = "warn"
	case "":
		level = "info"
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s (must be error, warn, info, or debug)", level)
	}

	return lvl, nil
}

// setupLogger builds a production logger on stderr. Standard output is reserved for
// trial records. Every line carries the session id of this run.
func setupLogger(level string) (*zap.Logger, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.With(zap.String("session", uuid.NewString())), nil
}
