package main

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logFile = "app.log"

// newLogger returns a file logger at path, or a no-op logger when logging is
// disabled. Unknown levels fall back to WARNING with a notice on warn.
func newLogger(path string, warn io.Writer, enabled bool, level string) (*zap.Logger, error) {
	if !enabled {
		return zap.NewNop(), nil
	}

	lvl, ok := parseLevel(level)
	if !ok {
		fmt.Fprintf(warn, "[WARN] Log-Level '%s' ist ungültig. WARNING wird benutzt.\n", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	l.Info("logging enabled", zap.String("level", level))
	if !ok {
		l.Warn("invalid log level, using WARNING", zap.String("requested", level))
	}
	return l, nil
}

func parseLevel(s string) (zapcore.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INFO":
		return zapcore.InfoLevel, true
	case "WARNING", "WARN":
		return zapcore.WarnLevel, true
	default:
		return zapcore.WarnLevel, false
	}
}
