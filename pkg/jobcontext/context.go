// Package jobcontext carries pipeline run metadata through a context.
package jobcontext

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KeyContext string

var (
	keyRunID        KeyContext = "run_id"
	keyRunKind      KeyContext = "run_kind"
	keyStage        KeyContext = "stage"
	keyRunStartTime KeyContext = "run_start_time"
)

// DefaultTimeout bounds a run when no timeout is given
const DefaultTimeout = 15 * time.Minute

// RunMetadata holds metadata for one pipeline run
type RunMetadata struct {
	RunID     uuid.UUID
	Kind      string
	Stage     string
	StartTime time.Time
}

// RunBegin derives a run context with metadata and a deadline
func RunBegin(parentCtx context.Context, runID uuid.UUID, kind string, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyRunKind, kind)
	ctx = context.WithValue(ctx, keyRunStartTime, time.Now())

	return ctx, cancel
}

// RunEnd executes fn once, turning a panic into an error. Runs are never
// retried.
func RunEnd(ctx context.Context, fn func(context.Context) error) (err error) {
	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before run execution: %w", ctx.Err())
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()
	return fn(ctx)
}

// GetRunID extracts the run ID from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetRunKind extracts the run kind from context
func GetRunKind(ctx context.Context) (string, bool) {
	kind, ok := ctx.Value(keyRunKind).(string)
	return kind, ok
}

// SetStage records the stage currently executing
func SetStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, keyStage, stage)
}

// GetStage extracts the current stage from context
func GetStage(ctx context.Context) string {
	stage, _ := ctx.Value(keyStage).(string)
	return stage
}

// GetRunStartTime extracts the run start time from context
func GetRunStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyRunStartTime).(time.Time)
	return startTime, ok
}

// GetRunMetadata extracts all run metadata from context
func GetRunMetadata(ctx context.Context) *RunMetadata {
	runID, _ := GetRunID(ctx)
	kind, _ := GetRunKind(ctx)
	startTime, _ := GetRunStartTime(ctx)

	return &RunMetadata{
		RunID:     runID,
		Kind:      kind,
		Stage:     GetStage(ctx),
		StartTime: startTime,
	}
}

// Fields returns the run metadata as log fields
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if runID, ok := GetRunID(ctx); ok {
		fields = append(fields, zap.String("run_id", runID.String()))
	}
	if kind, ok := GetRunKind(ctx); ok {
		fields = append(fields, zap.String("run_kind", kind))
	}
	if stage := GetStage(ctx); stage != "" {
		fields = append(fields, zap.String("stage", stage))
	}
	return fields
}
