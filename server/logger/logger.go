package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the server logger. Development mode gets colored, human readable
// output; otherwise entries are JSON encoded at info level.
func NewLogger(devMode bool) *zap.SugaredLogger {
	config := zap.NewProductionConfig()
	if devMode {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		log.Panic(err)
	}

	return logger.Sugar()
}
