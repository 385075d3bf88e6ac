package logger

import (
	"context"

	rcontext "github.com/cratekit/cratekit/pkg/context"
)

// LoggerContext extends Logger with methods that read run-scoped fields
type LoggerContext interface {
	Logger
	InfoContext(ctx context.Context, message string, fields ...Field)
	ErrorContext(ctx context.Context, message string, fields ...Field)
	WarnContext(ctx context.Context, message string, fields ...Field)
	DebugContext(ctx context.Context, message string, fields ...Field)
}

var _ LoggerContext = (*TargetLogger)(nil)

// InfoContext logs an info message with run fields
func (l *TargetLogger) InfoContext(ctx context.Context, message string, fields ...Field) {
	l.Info(message, append(ContextFields(ctx), fields...)...)
}

// ErrorContext logs an error message with run fields
func (l *TargetLogger) ErrorContext(ctx context.Context, message string, fields ...Field) {
	l.Error(message, append(ContextFields(ctx), fields...)...)
}

// WarnContext logs a warning message with run fields
func (l *TargetLogger) WarnContext(ctx context.Context, message string, fields ...Field) {
	l.Warn(message, append(ContextFields(ctx), fields...)...)
}

// DebugContext logs a debug message with run fields
func (l *TargetLogger) DebugContext(ctx context.Context, message string, fields ...Field) {
	l.Debug(message, append(ContextFields(ctx), fields...)...)
}

// ContextFields extracts run_id, operation and duration_ms from ctx
func ContextFields(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}

	var fields []Field
	if id := rcontext.GetRunID(ctx); id != "" {
		fields = append(fields, WithField("run_id", id))
	}
	if op := rcontext.GetOperation(ctx); op != "" {
		fields = append(fields, WithField("operation", op))
	}
	if d := rcontext.GetDuration(ctx); d > 0 {
		fields = append(fields, WithField("duration_ms", d.Milliseconds()))
	}
	return fields
}

// WithContext returns a logger that attaches ctx's run fields to every entry
func WithContext(ctx context.Context, logger Logger) Logger {
	if ctx == nil {
		return logger
	}
	return &contextualLogger{ctx: ctx, logger: logger}
}

type contextualLogger struct {
	ctx    context.Context
	logger Logger
}

func (cl *contextualLogger) Info(message string, fields ...Field) {
	cl.logger.Info(message, append(ContextFields(cl.ctx), fields...)...)
}

func (cl *contextualLogger) Error(message string, fields ...Field) {
	cl.logger.Error(message, append(ContextFields(cl.ctx), fields...)...)
}

func (cl *contextualLogger) Warn(message string, fields ...Field) {
	cl.logger.Warn(message, append(ContextFields(cl.ctx), fields...)...)
}

func (cl *contextualLogger) Debug(message string, fields ...Field) {
	cl.logger.Debug(message, append(ContextFields(cl.ctx), fields...)...)
}

func (cl *contextualLogger) Success(message string, fields ...Field) {
	cl.logger.Success(message, append(ContextFields(cl.ctx), fields...)...)
}

func (cl *contextualLogger) WithTarget(target string) Logger {
	return &contextualLogger{ctx: cl.ctx, logger: cl.logger.WithTarget(target)}
}
