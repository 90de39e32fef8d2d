package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var level = zap.NewAtomicLevel()

// Init replaces zap's global logger. "prod" gets the JSON production
// encoder, every other environment the colored development one.
func Init(environment, logLevel string) error {
	if err := SetLevel(logLevel); err != nil {
		return err
	}

	var conf zap.Config
	if environment == "prod" {
		conf = zap.NewProductionConfig()
	} else {
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	conf.Level = level

	l, err := conf.Build()
	if err != nil {
		return fmt.Errorf("conf.Build -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}

// SetLevel changes the level of the global logger at runtime.
func SetLevel(logLevel string) error {
	if logLevel == "" {
		logLevel = "info"
	}

	lvl, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("zapcore.ParseLevel -> %w", err)
	}
	level.SetLevel(lvl)

	return nil
}
