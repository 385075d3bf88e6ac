// Package logger provides leveled, package-scoped logging
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger interface for abstracted logging
type Logger interface {
	Info(message string, fields ...Field)
	Error(message string, fields ...Field)
	Warn(message string, fields ...Field)
	Debug(message string, fields ...Field)
	Success(message string, fields ...Field)
	// WithTarget scopes the logger to a package name
	WithTarget(target string) Logger
}

// Field represents a structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// WithField creates a new field
func WithField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// TargetLogger implements Logger on top of logrus
type TargetLogger struct {
	logger     *logrus.Logger
	targetName string
	mu         sync.RWMutex
}

// CustomFormatter formats entries as a single colored line
type CustomFormatter struct {
	TimestampFormat string
	DisableColors   bool
}

var levelStyles = map[logrus.Level]struct {
	text  string
	color *color.Color
}{
	logrus.ErrorLevel: {"ERROR", color.New(color.FgRed, color.Bold)},
	logrus.WarnLevel:  {"WARN", color.New(color.FgYellow, color.Bold)},
	logrus.InfoLevel:  {"INFO", color.New(color.FgCyan)},
	logrus.DebugLevel: {"DEBUG", color.New(color.FgWhite, color.Faint)},
	logrus.TraceLevel: {"TRACE", color.New(color.FgWhite, color.Faint)},
}

// Format implements logrus.Formatter
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	style, ok := levelStyles[entry.Level]
	if !ok {
		style = levelStyles[logrus.ErrorLevel]
	}

	level := style.text
	if !f.DisableColors {
		level = style.color.Sprint(style.text)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: ", entry.Time.Format(f.TimestampFormat), level)

	if target, ok := entry.Data["target"]; ok {
		name := fmt.Sprint(target)
		if !f.DisableColors {
			name = color.New(color.FgBlue).Sprint(name)
		}
		fmt.Fprintf(&b, "[%s] ", name)
	}
	b.WriteString(entry.Message)

	// Remaining fields, sorted so output is stable
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != "target" {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s=%v", k, entry.Data[k])
		}
		fields := " {" + strings.Join(pairs, ", ") + "}"
		if !f.DisableColors {
			fields = color.New(color.FgWhite, color.Faint).Sprint(fields)
		}
		b.WriteString(fields)
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func parseLevel(logLevel string) logrus.Level {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// CreateLogger creates a logger writing to stderr, and to logFile if given
func CreateLogger(logFile string, logLevel string) Logger {
	log := logrus.New()
	log.SetLevel(parseLevel(logLevel))
	log.SetFormatter(&CustomFormatter{
		TimestampFormat: "15:04:05",
		DisableColors:   color.NoColor,
	})
	log.SetOutput(os.Stderr)

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			log.SetOutput(io.MultiWriter(os.Stderr, file))
		}
	}

	return &TargetLogger{logger: log}
}

// CreateLoggerWithOutput creates a logger with custom output (for testing)
func CreateLoggerWithOutput(logFile string, logLevel string, output io.Writer) Logger {
	log := logrus.New()
	log.SetLevel(parseLevel(logLevel))
	log.SetFormatter(&CustomFormatter{
		TimestampFormat: "15:04:05",
		DisableColors:   true,
	})
	log.SetOutput(output)

	return &TargetLogger{logger: log}
}

// WithTarget creates a new logger with target context
func (l *TargetLogger) WithTarget(target string) Logger {
	return &TargetLogger{
		logger:     l.logger,
		targetName: target,
	}
}

func (l *TargetLogger) convertFields(fields []Field) logrus.Fields {
	result := make(logrus.Fields, len(fields)+1)
	if l.targetName != "" {
		result["target"] = l.targetName
	}
	for _, f := range fields {
		result[f.Key] = f.Value
	}
	return result
}

// Info logs an info message
func (l *TargetLogger) Info(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Info(message)
}

// Error logs an error message
func (l *TargetLogger) Error(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Error(message)
}

// Warn logs a warning message
func (l *TargetLogger) Warn(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Warn(message)
}

// Debug logs a debug message
func (l *TargetLogger) Debug(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Debug(message)
}

// Success logs at info level with a check mark
func (l *TargetLogger) Success(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Info("✓ " + message)
}

// NopLogger discards everything
type NopLogger struct{}

// NewNopLogger returns a logger for library callers that did not supply one
func NewNopLogger() Logger { return NopLogger{} }

func (NopLogger) Info(string, ...Field) {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) Warn(string, ...Field) {}
func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Success(string, ...Field) {}
func (n NopLogger) WithTarget(string) Logger { return n }
