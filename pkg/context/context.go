// Package context carries run-scoped values for log correlation
package context

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var (
	runIDKey     = &struct{}{}
	operationKey = &struct{}{}
	startTimeKey = &struct{}{}
)

// WithRunID adds a run ID to the context, generating one when empty
func WithRunID(parent context.Context, runID string) context.Context {
	if runID == "" {
		runID = GenerateRunID()
	}
	return context.WithValue(parent, runIDKey, runID)
}

// GetRunID retrieves the run ID from context, or "" when there is none
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// WithOperation names the operation in progress
func WithOperation(parent context.Context, operation string) context.Context {
	return context.WithValue(parent, operationKey, operation)
}

// GetOperation retrieves the operation name from context
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey).(string); ok {
		return op
	}
	return ""
}

// WithStartTime records when the operation started
func WithStartTime(parent context.Context, startTime time.Time) context.Context {
	return context.WithValue(parent, startTimeKey, startTime)
}

// GetDuration returns the time elapsed since the recorded start, or zero
func GetDuration(ctx context.Context) time.Duration {
	if t, ok := ctx.Value(startTimeKey).(time.Time); ok {
		return time.Since(t)
	}
	return 0
}

// GenerateRunID creates a new unique run ID
func GenerateRunID() string {
	return "run_" + uuid.New().String()
}

// NewRun starts a traced run for operation
func NewRun(parent context.Context, operation string) context.Context {
	ctx := parent
	if GetRunID(ctx) == "" {
		ctx = WithRunID(ctx, "")
	}
	ctx = WithOperation(ctx, operation)
	return WithStartTime(ctx, time.Now())
}
