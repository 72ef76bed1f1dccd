package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/salqa/sal/cli/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *log.Logger

// Init initializes the logger. Output goes to the rotating log file from
// config; verbose forces debug level regardless of log.level.
func Init(verbose bool) {
	level := ParseLevel(config.GetString("log.level"))
	if verbose {
		level = log.DebugLevel
	}

	var w io.Writer = os.Stderr
	if logFile := config.GetString("log.file"); logFile != "" {
		w = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    config.GetInt("log.max_size_mb"),
			MaxBackups: config.GetInt("log.max_backups"),
			Compress:   true,
		}
	}

	SetOutput(w, level)
}

// SetOutput replaces the logger with one writing to w at the given level.
func SetOutput(w io.Writer, level log.Level) {
	logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "sal",
	})
	logger.SetLevel(level)
}

// ParseLevel maps a config string to a log level, defaulting to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}

// GetLogger returns the logger instance
func GetLogger() *log.Logger {
	return logger
}
