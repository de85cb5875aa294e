package cmd

import (
	"github.com/lbermudezd2020/appgasolinabueno/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the process logger. kind "nop" keeps the TUI screen
// clean, "json" is the production encoder used by serve, anything else is
// a compact console logger on stderr.
func newLogger(cfg config.Config, kind string) (*zap.Logger, error) {
	if kind == "nop" {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if flagQuiet && level < zapcore.WarnLevel {
		level = zapcore.WarnLevel
	}

	var zc zap.Config
	switch {
	case kind == "json" && !flagVerbose:
		zc = zap.NewProductionConfig()
	case flagVerbose:
		zc = zap.NewDevelopmentConfig()
	default:
		zc = zap.NewDevelopmentConfig()
		zc.DisableCaller = true
		zc.DisableStacktrace = true
		zc.EncoderConfig.TimeKey = ""
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
