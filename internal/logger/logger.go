package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger for the given environment. "production" yields a
// JSON logger at info level; anything else a colored console logger at debug
// level. LOG_LEVEL overrides the level in both cases.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	opts := []zap.Option{zap.AddCaller()}

	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := zapcore.ParseLevel(raw)
		if err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	// CLI output goes to stdout; keep logs on stderr.
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build(opts...)
}
