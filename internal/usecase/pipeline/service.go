package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/post-meeting-agent/internal/domain/repositories"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/duedate"
	usecaseerrors "github.com/johnquangdev/post-meeting-agent/internal/usecase/errors"
	"github.com/johnquangdev/post-meeting-agent/pkg/idgen"
	"github.com/johnquangdev/post-meeting-agent/pkg/jobcontext"
)

// Run kinds
const (
	KindProcess = "process"
	KindPreview = "preview"
)

// PreviewAction shows what dispatching an item would target without doing it
type PreviewAction struct {
	Title    string  `json:"title"`
	IssueURL *string `json:"issue_url"`
	ICSPath  *string `json:"ics_path"`
	DueDate  string  `json:"due_date,omitempty"`
}

// Preview is the result of analyzing a meeting without dispatching
type Preview struct {
	FilePath   string            `json:"file_path,omitempty"`
	Transcript string            `json:"transcript,omitempty"`
	Insights   entities.Insights `json:"insights"`
	Actions    []PreviewAction   `json:"actions"`
}

// Service runs meeting pipelines and keeps their history
type Service struct {
	transcriber Transcriber
	extractor   Extractor
	dispatcher  ActionDispatcher
	runs        repositories.MeetingRunRepository
	resolver    *duedate.Resolver
	ids         idgen.Generator
	timeout     time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithRunRepository saves every processed run to repo
func WithRunRepository(repo repositories.MeetingRunRepository) ServiceOption {
	return func(s *Service) { s.runs = repo }
}

// WithIDGenerator replaces the run id source
func WithIDGenerator(ids idgen.Generator) ServiceOption {
	return func(s *Service) { s.ids = ids }
}

// WithTimeout bounds each run
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

// WithClock replaces the wall clock used for preview due dates
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. resolver turns preview due phrases into dates.
func NewService(t Transcriber, e Extractor, d ActionDispatcher, resolver *duedate.Resolver, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = duedate.NewResolver(time.UTC)
	}
	s := &Service{
		transcriber: t,
		extractor:   e,
		dispatcher:  d,
		resolver:    resolver,
		ids:         idgen.New(),
		timeout:     jobcontext.DefaultTimeout,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process runs all four stages on the file and records the run
func (s *Service) Process(ctx context.Context, filePath string) (entities.PipelineState, error) {
	runID := s.ids.RunID()
	ctx, cancel := jobcontext.RunBegin(ctx, runID, KindProcess, s.timeout)
	defer cancel()

	p := New(s.logger,
		Intake(),
		Transcription(s.transcriber),
		Analysis(s.extractor),
		DispatchAll(s.dispatcher),
	)

	initial := entities.PipelineState{
		entities.StateKeyRunID: runID.String(),
		entities.StateKeyInput: map[string]interface{}{entities.StateKeyFilePath: filePath},
	}

	start := time.Now()
	var final entities.PipelineState
	err := jobcontext.RunEnd(ctx, func(ctx context.Context) error {
		var runErr error
		final, runErr = p.Run(ctx, initial)
		return runErr
	})
	if final == nil {
		final = initial
	}
	s.saveRun(ctx, runID, final, err, time.Since(start))

	if err != nil {
		return final, err
	}
	s.logger.Info("✅ Meeting processed",
		zap.String("run_id", runID.String()),
		zap.Int("actions", len(final.Actions())),
	)
	return final, nil
}

// Preview runs intake, transcription and analysis, and previews the actions
func (s *Service) Preview(ctx context.Context, filePath string) (*Preview, error) {
	runID := s.ids.RunID()
	ctx, cancel := jobcontext.RunBegin(ctx, runID, KindPreview, s.timeout)
	defer cancel()

	p := New(s.logger,
		Intake(),
		Transcription(s.transcriber),
		Analysis(s.extractor),
	)

	state, err := p.Run(ctx, entities.PipelineState{entities.StateKeyFilePath: filePath})
	if err != nil {
		return nil, err
	}
	insights, _ := state.Insights()
	return &Preview{
		FilePath:   state.FilePath(),
		Transcript: state.String(entities.StateKeyTranscript),
		Insights:   insights,
		Actions:    s.previewActions(insights),
	}, nil
}

// AnalyzeText extracts insights straight from transcript text
func (s *Service) AnalyzeText(ctx context.Context, transcript string) (entities.Insights, error) {
	return s.extractor.Extract(ctx, transcript)
}

// PreviewText is Preview for transcript text
func (s *Service) PreviewText(ctx context.Context, transcript string) (*Preview, error) {
	insights, err := s.extractor.Extract(ctx, transcript)
	if err != nil {
		return nil, err
	}
	return &Preview{Insights: insights, Actions: s.previewActions(insights)}, nil
}

// DispatchItem dispatches one action item outside any pipeline
func (s *Service) DispatchItem(ctx context.Context, item entities.ActionItem) (*entities.DispatchResult, error) {
	return s.dispatcher.Dispatch(ctx, item)
}

// GetRun returns a stored run
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*entities.MeetingRun, error) {
	if s.runs == nil {
		return nil, usecaseerrors.ErrRunNotFound
	}
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, usecaseerrors.ErrRunNotFound
	}
	return run, nil
}

// ListRuns returns stored runs, newest first. Without history it is empty.
func (s *Service) ListRuns(ctx context.Context, limit, offset int) ([]*entities.MeetingRun, error) {
	if s.runs == nil {
		return []*entities.MeetingRun{}, nil
	}
	return s.runs.List(ctx, limit, offset)
}

func (s *Service) previewActions(insights entities.Insights) []PreviewAction {
	now := s.now()
	actions := make([]PreviewAction, 0, len(insights.ActionItems))
	for _, item := range insights.ActionItems {
		title := item.Title
		if title == "" {
			title = entities.DefaultActionTitle
		}
		pa := PreviewAction{Title: title}
		phrase := item.Due
		if phrase == "" {
			phrase = duedate.ExtractDuePhrase(item.Details)
		}
		if d, ok := s.resolver.Resolve(phrase, now); ok {
			pa.DueDate = d
		}
		actions = append(actions, pa)
	}
	return actions
}

// saveRun stores the run when history is enabled. Failures only log.
func (s *Service) saveRun(ctx context.Context, runID uuid.UUID, state entities.PipelineState, runErr error, elapsed time.Duration) {
	if s.runs == nil {
		return
	}
	// the run context may already be past its deadline
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	run := entities.NewMeetingRun(runID, state, runErr, elapsed)
	if err := s.runs.Create(saveCtx, run); err != nil {
		s.logger.Warn("⚠️ Failed to save meeting run",
			zap.String("run_id", runID.String()),
			zap.Error(err),
		)
	}
}
