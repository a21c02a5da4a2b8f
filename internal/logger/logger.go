package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brizzai/subcount-bot/internal/config"
	"github.com/brizzai/subcount-bot/internal/errs"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module provides the global logger, which must be initialized with InitLogger first
var Module = fx.Module("logger",
	fx.Provide(GetLogger),
)

var globalLogger = zap.NewNop()

// getConsoleEncoder returns a console encoder. Levels are not colored
// since the same encoder writes to the log file.
func getConsoleEncoder() zapcore.EncoderConfig {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339Nano)

	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	return encoderConfig
}

// getJSONEncoder returns a JSON encoder
func getJSONEncoder() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return encoderConfig
}

// InitLogger initializes the global logger with the given configuration
func InitLogger(cfg *config.LoggingConfig) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}

	// the package-level helpers below add one frame
	globalLogger = logger.WithOptions(zap.AddCallerSkip(1))
	return nil
}

// NewLogger creates a new zap logger writing to the configured log file and,
// unless disabled, to the console. Failing to open the file is an error.
func NewLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	// Set log level
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errs.E(errs.KindConfig, "logging.level", fmt.Errorf("invalid log level: %w", err))
	}

	// Configure encoder based on format
	var encoding string
	var encoderConfig zapcore.EncoderConfig
	switch cfg.Format {
	case "json":
		encoding = "json"
		encoderConfig = getJSONEncoder()
	case "console", "":
		encoding = "console"
		encoderConfig = getConsoleEncoder()
	default:
		return nil, errs.E(errs.KindConfig, "logging.format", fmt.Errorf("unknown log format %q", cfg.Format))
	}

	// The sink file is mandatory and only ever appended to; zap opens
	// file paths with O_APPEND|O_CREATE.
	if cfg.OutputPath == "" {
		return nil, errs.MissingConfig("log_file", config.EnvPrefix+"_LOG_FILE")
	}
	dir := filepath.Dir(cfg.OutputPath)
	if dir != "." && dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.IO("create log directory", fmt.Errorf("%s: %w", dir, err))
		}
	}

	outputPaths := []string{cfg.OutputPath}
	errorOutputPaths := []string{cfg.OutputPath}
	if !cfg.DisableConsole {
		outputPaths = append(outputPaths, "stdout")
		errorOutputPaths = append(errorOutputPaths, "stderr")
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      encoding == "console",
		Encoding:         encoding,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: errorOutputPaths,
		EncoderConfig:    encoderConfig,
	}

	// Build with or without stacktrace based on configuration
	var logger *zap.Logger
	if cfg.DisableStacktrace {
		logger, err = zapConfig.Build()
	} else {
		logger, err = zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	}

	if err != nil {
		return nil, errs.IO("open log sink", fmt.Errorf("failed to build logger: %w", err))
	}

	return logger, nil
}

// GetLogger returns the global logger instance, without the helper caller skip
func GetLogger() *zap.Logger {
	return globalLogger.WithOptions(zap.AddCallerSkip(-1))
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	globalLogger.Debug(msg, fields...)
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	globalLogger.Info(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	globalLogger.Error(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return globalLogger.Sync()
}
