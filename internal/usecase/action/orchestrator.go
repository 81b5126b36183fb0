// Package action turns a single action item into a tracker issue and, when
// a date can be resolved, a calendar artifact.
package action

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/calendar"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/duedate"
	usecaseerrors "github.com/johnquangdev/post-meeting-agent/internal/usecase/errors"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/issue"
)

const (
	defaultBody = "Task created from meeting insights."
	noDueText   = "—"
	unassigned  = "Unassigned"
)

// Emitter writes calendar artifacts
type Emitter interface {
	Emit(ctx context.Context, title string, start time.Time) (*calendar.Artifact, error)
}

// IssueDispatcher finds or creates tracker issues
type IssueDispatcher interface {
	Dispatch(ctx context.Context, req issue.Request) (*issue.Result, error)
}

// OwnerResolver maps an owner to tracker assignees
type OwnerResolver interface {
	Resolve(owner string) []string
}

// Orchestrator dispatches action items one at a time
type Orchestrator struct {
	emitter Emitter
	issues  IssueDispatcher
	owners  OwnerResolver
	dates   *duedate.FreeText
	labels  []string
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLabels sets the labels attached to every issue
func WithLabels(labels []string) Option {
	return func(o *Orchestrator) { o.labels = labels }
}

// WithClock replaces the wall clock used for relative dates
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator wires the collaborators of one dispatch. dates anchors
// resolved events in its zone.
func NewOrchestrator(emitter Emitter, issues IssueDispatcher, owners OwnerResolver, dates *duedate.FreeText, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dates == nil {
		dates = duedate.NewFreeText(time.UTC)
	}
	o := &Orchestrator{
		emitter: emitter,
		issues:  issues,
		owners:  owners,
		dates:   dates,
		labels:  []string{"meeting", "action-item"},
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Dispatch resolves the item's date, writes its calendar artifact when a
// date was found and then finds or creates its issue. An issue failure fails
// the whole dispatch; an artifact already written stays on disk.
func (o *Orchestrator) Dispatch(ctx context.Context, item entities.ActionItem) (*entities.DispatchResult, error) {
	title := item.Title
	if title == "" {
		title = entities.DefaultActionTitle
	}
	logger := o.logger.With(zap.String("title", title), zap.String("task_id", item.TaskID))

	when, ok := o.when(item)

	result := &entities.DispatchResult{Title: title}
	if ok {
		artifact, err := o.emitter.Emit(ctx, title, when)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", usecaseerrors.ErrCalendarWrite, err)
		}
		result.ICSPath = artifact.Path
		result.ICSURL = artifact.URL
		result.DueDate = when.Format(duedate.ISODateLayout)
	}

	dueText := item.Due
	if dueText == "" && ok {
		dueText = when.Format(duedate.ISODateLayout)
	}
	if dueText == "" {
		dueText = noDueText
	}

	res, err := o.issues.Dispatch(ctx, issue.Request{
		Title:          title,
		Body:           Body(item.Details, item.Owner, dueText),
		Labels:         o.labels,
		Assignees:      o.owners.Resolve(item.Owner),
		IdempotencyKey: item.IdempotencyKey,
	})
	if err != nil {
		logger.Error("❌ Issue dispatch failed", zap.Error(err))
		return nil, err
	}

	result.IssueURL = res.URL
	if result.IssueURL == "" {
		result.IssueURL = FallbackURL(title)
	}

	logger.Info("✅ Action item dispatched",
		zap.String("issue_url", result.IssueURL),
		zap.String("ics_path", result.ICSPath),
	)
	return result, nil
}

// when picks the event start: a strict ISO due date at the start hour, else
// the free-text scan of due, or of details when due is empty.
func (o *Orchestrator) when(item entities.ActionItem) (time.Time, bool) {
	if duedate.IsISODate(item.Due) {
		t, err := o.dates.AtStartHour(item.Due)
		if err == nil {
			return t, true
		}
	}
	text := item.Due
	if text == "" {
		text = item.Details
	}
	return o.dates.Parse(text, o.now())
}

// Body renders the issue body for an action item
func Body(details, owner, dueText string) string {
	if details == "" {
		details = defaultBody
	}
	if owner == "" {
		owner = unassigned
	}
	return details + "\n\n**Owner**: " + owner + "\n**Due**: " + dueText + "\n"
}

// FallbackURL is the mock URL used when the tracker returns an empty one
func FallbackURL(title string) string {
	return issue.MockURL(title)
}
