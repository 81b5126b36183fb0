// Package calendar writes minimal single-event iCalendar artifacts.
package calendar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/johnquangdev/post-meeting-agent/internal/infrastructure/metrics"
	"github.com/johnquangdev/post-meeting-agent/pkg/idgen"
)

const (
	// DefaultDuration is the event length when none is configured
	DefaultDuration = 30 * time.Minute

	prodID       = "-//PostMeetingAgent//EN"
	mirrorPrefix = "calendar/"
)

var slugPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Slugify lower-cases s and collapses every run of characters outside
// [a-zA-Z0-9_-] into a single dash.
func Slugify(s string) string {
	return strings.ToLower(strings.Trim(slugPattern.ReplaceAllString(s, "-"), "-"))
}

// Mirror copies written artifacts to remote storage and returns a URL for them
type Mirror interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// Artifact describes one written calendar file
type Artifact struct {
	Path  string
	UID   string
	Start time.Time
	End   time.Time
	URL   string // set only when the mirror upload succeeded
}

// Emitter builds and stores calendar artifacts
type Emitter struct {
	dir      string
	duration time.Duration
	ids      idgen.Generator
	now      func() time.Time
	mirror   Mirror
	logger   *zap.Logger
}

// Option configures an Emitter
type Option func(*Emitter)

// WithDuration sets the default event length
func WithDuration(d time.Duration) Option {
	return func(e *Emitter) {
		if d > 0 {
			e.duration = d
		}
	}
}

// WithIDGenerator replaces the UID source
func WithIDGenerator(ids idgen.Generator) Option {
	return func(e *Emitter) { e.ids = ids }
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(e *Emitter) { e.now = now }
}

// WithMirror uploads every written artifact to m
func WithMirror(m Mirror) Option {
	return func(e *Emitter) { e.mirror = m }
}

// NewEmitter creates an Emitter writing into dir
func NewEmitter(dir string, logger *zap.Logger, opts ...Option) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Emitter{
		dir:      dir,
		duration: DefaultDuration,
		ids:      idgen.New(),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit writes a one-event calendar for title starting at start, lasting the
// configured duration. A zero start means tomorrow at 09:00 UTC.
func (e *Emitter) Emit(ctx context.Context, title string, start time.Time) (*Artifact, error) {
	return e.EmitRange(ctx, title, start, time.Time{})
}

// EmitRange is Emit with an explicit end. A zero or non-positive end falls
// back to start plus the configured duration.
func (e *Emitter) EmitRange(ctx context.Context, title string, start, end time.Time) (*Artifact, error) {
	now := e.now().UTC()
	if start.IsZero() {
		start = time.Date(now.Year(), now.Month(), now.Day()+1, 9, 0, 0, 0, time.UTC)
	}
	if end.IsZero() || !end.After(start) {
		end = start.Add(e.duration)
	}

	uid := e.ids.EventUID()
	content := render(uid, now, start, end, title)

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create calendar dir: %w", err)
	}
	name := fileName(title, uid)
	path, err := filepath.Abs(filepath.Join(e.dir, name))
	if err != nil {
		return nil, fmt.Errorf("resolve calendar path: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write calendar file: %w", err)
	}
	metrics.CalendarEventsTotal.WithLabelValues(metrics.ResultWritten).Inc()

	artifact := &Artifact{Path: path, UID: uid, Start: start, End: end}

	if e.mirror != nil {
		url, err := e.mirror.Upload(ctx, mirrorPrefix+name, []byte(content), "text/calendar")
		if err != nil {
			metrics.CalendarEventsTotal.WithLabelValues(metrics.ResultMirrorFailed).Inc()
			e.logger.Warn("⚠️ Failed to mirror calendar artifact",
				zap.String("ics_path", path),
				zap.Error(err),
			)
		} else {
			metrics.CalendarEventsTotal.WithLabelValues(metrics.ResultMirrored).Inc()
			artifact.URL = url
		}
	}

	e.logger.Info("📅 Calendar artifact written",
		zap.String("ics_path", path),
		zap.String("uid", uid),
		zap.Time("start", start),
	)
	return artifact, nil
}

func fileName(title, uid string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "event"
	}
	prefix := uid
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return slug + "-" + prefix + ".ics"
}

func render(uid string, stamp, start, end time.Time, title string) string {
	cal := ics.NewCalendar()
	cal.SetProductId(prodID)

	event := cal.AddEvent(uid)
	event.SetDtStampTime(stamp)
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetSummary(title)
	return cal.Serialize()
}
