// Package pipeline threads a PipelineState through the meeting stages:
// intake, transcription, analysis and dispatch-all.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/post-meeting-agent/internal/infrastructure/metrics"
	usecaseerrors "github.com/johnquangdev/post-meeting-agent/internal/usecase/errors"
	"github.com/johnquangdev/post-meeting-agent/pkg/jobcontext"
)

// Stage names
const (
	StageIntake        = "intake"
	StageTranscription = "transcription"
	StageAnalysis      = "analysis"
	StageDispatch      = "dispatch"
)

// Transcriber turns an audio file into text
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Extractor turns a transcript into insights
type Extractor interface {
	Extract(ctx context.Context, transcript string) (entities.Insights, error)
}

// ActionDispatcher dispatches one action item
type ActionDispatcher interface {
	Dispatch(ctx context.Context, item entities.ActionItem) (*entities.DispatchResult, error)
}

// StageFunc reads what it needs from state and returns only the keys it
// adds or overwrites
type StageFunc func(ctx context.Context, state entities.PipelineState) (entities.PipelineState, error)

// Stage is one named step of a pipeline
type Stage struct {
	Name string
	Run  StageFunc
}

// Pipeline runs its stages strictly in order
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

// New creates a Pipeline
func New(logger *zap.Logger, stages ...Stage) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{stages: stages, logger: logger}
}

// Stages returns the stage names in order
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Run executes every stage, merging each output into the carried state. On
// failure it returns the state accumulated so far with the error.
func (p *Pipeline) Run(ctx context.Context, initial entities.PipelineState) (entities.PipelineState, error) {
	state := initial.Clone()
	for _, stage := range p.stages {
		stageCtx := jobcontext.SetStage(ctx, stage.Name)
		logger := p.logger.With(jobcontext.Fields(stageCtx)...)

		start := time.Now()
		update, err := stage.Run(stageCtx, state)
		metrics.PipelineStageSeconds.WithLabelValues(stage.Name).Observe(time.Since(start).Seconds())
		if err != nil {
			logger.Error("❌ Pipeline stage failed", zap.Error(err))
			return state, fmt.Errorf("%s stage: %w", stage.Name, err)
		}

		state = state.Merge(update)
		logger.Debug("Pipeline stage completed", zap.Duration("elapsed", time.Since(start)))
	}
	return state, nil
}

// Intake requires a file path at file_path or input.file_path
func Intake() Stage {
	return Stage{Name: StageIntake, Run: func(_ context.Context, state entities.PipelineState) (entities.PipelineState, error) {
		path := state.FilePath()
		if path == "" {
			return nil, usecaseerrors.ErrMissingFilePath
		}
		return entities.PipelineState{entities.StateKeyFilePath: path}, nil
	}}
}

// Transcription transcribes the file at file_path
func Transcription(t Transcriber) Stage {
	return Stage{Name: StageTranscription, Run: func(ctx context.Context, state entities.PipelineState) (entities.PipelineState, error) {
		path := state.FilePath()
		if path == "" {
			return nil, fmt.Errorf("no file_path in state: %w", usecaseerrors.ErrMissingFilePath)
		}
		text, err := t.Transcribe(ctx, path)
		if err != nil {
			return nil, err
		}
		return entities.PipelineState{entities.StateKeyTranscript: text}, nil
	}}
}

// Analysis extracts insights from the transcript
func Analysis(e Extractor) Stage {
	return Stage{Name: StageAnalysis, Run: func(ctx context.Context, state entities.PipelineState) (entities.PipelineState, error) {
		insights, err := e.Extract(ctx, state.String(entities.StateKeyTranscript))
		if err != nil {
			return nil, err
		}
		return entities.PipelineState{entities.StateKeyInsights: insights}, nil
	}}
}

// DispatchAll dispatches every action item in order, one at a time. The
// first failure fails the stage.
func DispatchAll(d ActionDispatcher) Stage {
	return Stage{Name: StageDispatch, Run: func(ctx context.Context, state entities.PipelineState) (entities.PipelineState, error) {
		insights, _ := state.Insights()
		actions := make([]entities.DispatchResult, 0, len(insights.ActionItems))
		for i, item := range insights.ActionItems {
			res, err := d.Dispatch(ctx, item)
			if err != nil {
				return nil, fmt.Errorf("action item %d (%q): %w", i, item.Title, err)
			}
			actions = append(actions, *res)
		}
		return entities.PipelineState{entities.StateKeyActions: actions}, nil
	}}
}
