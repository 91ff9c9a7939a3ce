package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapConfig defines the zap backend configuration
type ZapConfig struct {
	Level  string    `yaml:"level" mapstructure:"level"`   // "debug", "info", "warn", "error"
	Format string    `yaml:"format" mapstructure:"format"` // "json", "console"
	Caller bool      `yaml:"caller" mapstructure:"caller"`
	Output io.Writer `yaml:"-" mapstructure:"-"` // defaults to stderr
}

// DefaultZapConfig returns the configuration used by deployctl when nothing is set
func DefaultZapConfig() ZapConfig {
	return ZapConfig{
		Level:  "info",
		Format: "json",
	}
}

// ZapLogger adapts a sugared zap logger to the Logger interface
type ZapLogger struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

// NewZapLogger creates a Logger backed by zap
func NewZapLogger(config ZapConfig) (*ZapLogger, error) {
	level, err := ParseLevel(config.Level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	var encoder zapcore.Encoder
	switch config.Format {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case "json", "":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("invalid log format: %s", config.Format)
	}

	var output io.Writer = os.Stderr
	if config.Output != nil {
		output = config.Output
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(output)), level)

	var opts []zap.Option
	if config.Caller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	zapLogger := zap.New(core, opts...)
	return &ZapLogger{
		logger: zapLogger,
		sugar:  zapLogger.Sugar(),
	}, nil
}

func (z *ZapLogger) LogLevelf(level int, format string, args ...interface{}) {
	switch level {
	case LogLevelDebug:
		z.sugar.Debugf(format, args...)
	case LogLevelWarn:
		z.sugar.Warnf(format, args...)
	case LogLevelError:
		z.sugar.Errorf(format, args...)
	default:
		z.sugar.Infof(format, args...)
	}
}

func (z *ZapLogger) Debugf(format string, args ...interface{}) {
	z.sugar.Debugf(format, args...)
}

func (z *ZapLogger) Infof(format string, args ...interface{}) {
	z.sugar.Infof(format, args...)
}

func (z *ZapLogger) Warnf(format string, args ...interface{}) {
	z.sugar.Warnf(format, args...)
}

func (z *ZapLogger) Errorf(format string, args ...interface{}) {
	z.sugar.Errorf(format, args...)
}

// Sync flushes any buffered log entries
func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}

// ParseLevel maps a level name onto a zap level.
// zap v1.20 has no zapcore.ParseLevel.
func ParseLevel(levelStr string) (zapcore.Level, error) {
	switch levelStr {
	case "debug":
		return zap.DebugLevel, nil
	case "info", "":
		return zap.InfoLevel, nil
	case "warn":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("invalid log level: %s", levelStr)
	}
}
