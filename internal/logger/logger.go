// Package logger provides structured logging for the gateway, backed by
// logrus with optional file rotation.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config represents logging configuration.
type Config struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json, text
	Output     string `yaml:"output"` // stdout, stderr, file
	LogDir     string `yaml:"log_dir"`
	MaxSize    int    `yaml:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig is the configuration used when none is supplied.
var DefaultConfig = Config{
	Level:      "info",
	Format:     "json",
	Output:     "stdout",
	LogDir:     "logs",
	MaxSize:    100,
	MaxBackups: 10,
	MaxAge:     30,
	Compress:   true,
}

// Logger is a structured logger with chained field support.
type Logger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// New creates a logger from the given configuration.
func New(config Config) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(config.Format) {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	l.SetOutput(resolveOutput(config))

	return &Logger{
		logger: l,
		fields: make(logrus.Fields),
	}
}

func resolveOutput(config Config) io.Writer {
	switch strings.ToLower(config.Output) {
	case "stderr":
		return os.Stderr
	case "file":
		dir := config.LogDir
		if dir == "" {
			dir = "logs"
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return os.Stdout
		}
		writer := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "botgate.log"),
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		}
		if strings.ToLower(config.Level) == "debug" {
			return io.MultiWriter(writer, os.Stdout)
		}
		return writer
	default:
		return os.Stdout
	}
}

// WithField returns a logger with an extra field attached.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	fields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Logger{logger: l.logger, fields: fields}
}

// WithFields returns a logger with extra fields attached.
func (l *Logger) WithFields(extra map[string]interface{}) *Logger {
	fields := make(logrus.Fields, len(l.fields)+len(extra))
	for k, v := range l.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}
	return &Logger{logger: l.logger, fields: fields}
}

// WithError returns a logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *Logger) entry() *logrus.Entry {
	return l.logger.WithFields(l.fields)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) { l.entry().Debugf(format, args...) }

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) { l.entry().Infof(format, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) { l.entry().Warnf(format, args...) }

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) { l.entry().Errorf(format, args...) }

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(format string, args ...interface{}) { l.entry().Fatalf(format, args...) }

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

// Default returns the process-wide logger.
func Default() *Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(DefaultConfig)
	}
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Info logs an info message on the default logger.
func Info(format string, args ...interface{}) { Default().Info(format, args...) }

// Warn logs a warning message on the default logger.
func Warn(format string, args ...interface{}) { Default().Warn(format, args...) }

// Error logs an error message on the default logger.
func Error(format string, args ...interface{}) { Default().Error(format, args...) }

// Debug logs a debug message on the default logger.
func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }
