package logging

import (
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the global logger from the log.* config section and
// installs it via zap.ReplaceGlobals. Console output always goes to stderr;
// a rotating JSON file core is added when log.filename is set.
func NewLogger(cfg *viper.Viper) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.GetString("log.level"))
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCfg := encCfg
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if filename := cfg.GetString("log.filename"); filename != "" {
		sink := &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    cfg.GetInt("log.max_size"),
			MaxAge:     cfg.GetInt("log.max_age"),
			MaxBackups: cfg.GetInt("log.max_backups"),
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(sink), level))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	zap.ReplaceGlobals(logger)
	return logger, nil
}
