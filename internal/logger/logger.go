// internal/logger/logger.go
package logger

import (
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger расширяет функционал zap.Logger
type Logger struct {
	*zap.Logger
	config *Config
	closer io.Closer
}

// New создает логгер: консоль плюс, если задан LogFile, JSON файл с ротацией
func New(cfg *Config) (*Logger, error) {
	return newWithConsole(cfg, zapcore.Lock(os.Stdout))
}

func newWithConsole(cfg *Config, console zapcore.WriteSyncer) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Базовая конфигурация энкодера
	encoderConfig := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	// Определяем уровень логирования
	level := zapcore.InfoLevel
	if cfg.Development {
		level = zapcore.DebugLevel
	}

	var consoleCore zapcore.Core
	if cfg.Pretty {
		consoleCore = &PrettyCore{core: zapcore.NewCore(PrettyEncoder(), console, level)}
	} else {
		consoleCore = zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), console, level)
	}
	cores := []zapcore.Core{consoleCore}

	var closer io.Closer
	if cfg.LogFile != "" {
		// Настройка ротации логов
		logRotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		closer = logRotator
		// в файл всегда пишем debug, консоль остается чистой
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(logRotator), zapcore.DebugLevel))
	}

	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...),
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
		config: cfg,
		closer: closer,
	}, nil
}

// WithOperation создает логгер для конкретной операции
func (l *Logger) WithOperation(operation string) *zap.Logger {
	return l.With(
		zap.String("operation", operation),
		zap.String("correlation_id", uuid.New().String()),
		zap.Time("start_time", time.Now().UTC()),
	)
}

// LogError логирует ошибку с дополнительным контекстом
func (l *Logger) LogError(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.Error(msg, fields...)
}

// Sync реализует безопасный вызов Sync: ошибки sync для терминала игнорируются
func (l *Logger) Sync() error {
	err := l.Logger.Sync()
	if err != nil && (errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)) {
		err = nil
	}
	if l.closer != nil {
		if cerr := l.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// TrackPerformance отслеживает производительность операции
func TrackPerformance(logger *zap.Logger, operation string) (end func()) {
	start := time.Now()
	logger.Debug("Starting operation", zap.String("operation", operation))

	return func() {
		duration := time.Since(start)
		logger.Debug("Operation completed",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Float64("duration_ms", float64(duration.Microseconds())/1000),
		)
	}
}
