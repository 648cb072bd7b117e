package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init builds the process logger: JSON in production, colored console
// otherwise. Level comes from LOG_LEVEL.
func Init(env, level string) *zap.Logger {
	once.Do(func() {
		var cfg zap.Config
		if env == "production" {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			lvl = zapcore.InfoLevel
		}
		cfg.Level.SetLevel(lvl)

		l, err := cfg.Build()
		if err != nil {
			panic("build logger: " + err.Error())
		}
		instance = l
	})
	return instance
}

// Get returns the process logger, initializing a production fallback if Init
// was never called.
func Get() *zap.Logger {
	if instance == nil {
		return Init("production", "info")
	}
	return instance
}
