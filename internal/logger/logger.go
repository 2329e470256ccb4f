// Package logger builds the process-wide zap logger.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLevel  = "info"
	DefaultFormat = "console"

	// DefaultMaxSize is the default size of log files, in MB.
	DefaultMaxSize = 300
)

// FileConfig configures the optional rotating log file.
type FileConfig struct {
	// Log filename, leave empty to disable file log.
	Filename string `mapstructure:"filename"`
	// Max size for a single file, in MB.
	MaxSize int `mapstructure:"max_size"`
	// Max log keep days, default is never deleting.
	MaxDays int `mapstructure:"max_days"`
	// Maximum number of old log files to retain.
	MaxBackups int `mapstructure:"max_backups"`
}

type Config struct {
	Level string `mapstructure:"level"`
	// Log format. one of json or console.
	Format string     `mapstructure:"format"`
	File   FileConfig `mapstructure:"file"`
}

// New builds a logger writing to stderr and, when configured, a rotated file.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level == "" {
		cfg.Level = DefaultLevel
	}
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch cfg.Format {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "", "console", "text":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}
	if cfg.File.Filename != "" {
		sinks = append(sinks, zapcore.AddSync(newRotatingFile(cfg.File)))
	}

	core := zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(sinks...), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func newRotatingFile(cfg FileConfig) *lumberjack.Logger {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxDays,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}
}
