// Package issue finds or creates tracker issues for action items, keyed by
// an idempotency marker embedded in the issue body.
//
// The search-then-create sequence is not atomic. Two concurrent dispatches
// with the same key can both miss the search and create duplicates; only a
// uniqueness constraint on the tracker side could prevent that.
package issue

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/post-meeting-agent/internal/infrastructure/cache"
	"github.com/johnquangdev/post-meeting-agent/internal/infrastructure/external/github"
	"github.com/johnquangdev/post-meeting-agent/internal/infrastructure/metrics"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/calendar"
	usecaseerrors "github.com/johnquangdev/post-meeting-agent/internal/usecase/errors"
	"github.com/johnquangdev/post-meeting-agent/pkg/config"
)

// MockBaseURL prefixes every synthesized issue URL
const MockBaseURL = "https://github.com/mock/"

// Tracker is the remote issue API
type Tracker interface {
	SearchIssues(ctx context.Context, query string) ([]github.Issue, error)
	CreateIssue(ctx context.Context, in github.CreateIssueRequest) (*github.Issue, error)
}

// Request describes the issue to find or create
type Request struct {
	Title          string
	Body           string
	Labels         []string
	Assignees      []string
	IdempotencyKey string
}

// Result is the issue that now represents the request
type Result struct {
	URL     string `json:"html_url"`
	Title   string `json:"title"`
	Number  int    `json:"number,omitempty"`
	Outcome string `json:"-"`
}

// CreateError reports a rejected create call with the upstream response
type CreateError struct {
	StatusCode int
	Payload    string
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("GitHub create failed: %d %s", e.StatusCode, e.Payload)
}

func (e *CreateError) Unwrap() error {
	return usecaseerrors.ErrTrackerCreate
}

// Dispatcher finds or creates one issue per idempotency token
type Dispatcher struct {
	tracker  Tracker
	repo     string
	store    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithTracker overrides the tracker built from config
func WithTracker(t Tracker) Option {
	return func(d *Dispatcher) { d.tracker = t }
}

// WithCache remembers found and created issues in store for ttl
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(d *Dispatcher) {
		d.store = store
		d.cacheTTL = ttl
	}
}

// NewDispatcher creates a Dispatcher. Without both a token and a repository
// in cfg the dispatcher only produces mock URLs.
func NewDispatcher(cfg config.GitHubConfig, logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{repo: cfg.Repo, logger: logger}
	if cfg.Token != "" && cfg.Repo != "" {
		d.tracker = github.NewClient(&cfg)
	}
	for _, opt := range opts {
		opt(d)
	}
	if cfg.Token == "" || cfg.Repo == "" {
		d.tracker = nil
	}
	return d
}

// Configured reports whether real tracker calls are made
func (d *Dispatcher) Configured() bool {
	return d.tracker != nil
}

// Dispatch returns the existing issue carrying the request's idempotency
// marker, or creates one. A rejected create returns *CreateError.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	if d.tracker == nil {
		metrics.IssueDispatchTotal.WithLabelValues(metrics.OutcomeMock).Inc()
		return &Result{URL: MockURL(req.Title), Title: req.Title, Outcome: metrics.OutcomeMock}, nil
	}

	token := IdempotencyToken(req)
	logger := d.logger.With(zap.String("idempotency_key", token), zap.String("repo", d.repo))

	if res := d.lookupCache(ctx, token, logger); res != nil {
		metrics.IssueDispatchTotal.WithLabelValues(metrics.OutcomeCached).Inc()
		return res, nil
	}

	items, err := d.tracker.SearchIssues(ctx, SearchQuery(d.repo, token))
	var apiErr *github.APIError
	switch {
	case errors.As(err, &apiErr):
		logger.Warn("⚠️ Issue search rejected, creating without dedup",
			zap.Int("status_code", apiErr.StatusCode),
		)
	case err != nil:
		metrics.IssueDispatchTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	default:
		if found := findMarked(items, token); found != nil {
			res := fromIssue(found, metrics.OutcomeFound)
			logger.Info("🔁 Existing issue found", zap.String("issue_url", res.URL))
			d.storeCache(ctx, token, res, logger)
			metrics.IssueDispatchTotal.WithLabelValues(metrics.OutcomeFound).Inc()
			return res, nil
		}
	}

	in := github.CreateIssueRequest{
		Title:  req.Title,
		Body:   strings.TrimRight(req.Body, " \t\r\n") + "\n\n" + Marker(token),
		Labels: req.Labels,
	}
	for _, a := range req.Assignees {
		if a != "" {
			in.Assignees = append(in.Assignees, a)
		}
	}

	created, err := d.tracker.CreateIssue(ctx, in)
	if err != nil {
		metrics.IssueDispatchTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		if errors.As(err, &apiErr) {
			logger.Error("❌ Issue create rejected",
				zap.Int("status_code", apiErr.StatusCode),
				zap.String("payload", apiErr.Payload),
			)
			return nil, &CreateError{StatusCode: apiErr.StatusCode, Payload: apiErr.Payload}
		}
		return nil, fmt.Errorf("%w: %v", usecaseerrors.ErrTrackerCreate, err)
	}

	res := fromIssue(created, metrics.OutcomeCreated)
	logger.Info("✅ Issue created", zap.String("issue_url", res.URL))
	d.storeCache(ctx, token, res, logger)
	metrics.IssueDispatchTotal.WithLabelValues(metrics.OutcomeCreated).Inc()
	return res, nil
}

func (d *Dispatcher) cacheKey(token string) string {
	return "issue:idem:" + d.repo + ":" + token
}

func (d *Dispatcher) lookupCache(ctx context.Context, token string, logger *zap.Logger) *Result {
	if d.store == nil {
		return nil
	}
	raw, ok, err := d.store.Get(ctx, d.cacheKey(token))
	if err != nil {
		logger.Warn("⚠️ Issue cache lookup failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil || res.URL == "" {
		return nil
	}
	res.Outcome = metrics.OutcomeCached
	return &res
}

func (d *Dispatcher) storeCache(ctx context.Context, token string, res *Result, logger *zap.Logger) {
	if d.store == nil || res.URL == "" {
		return
	}
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := d.store.Set(ctx, d.cacheKey(token), string(b), d.cacheTTL); err != nil {
		logger.Warn("⚠️ Issue cache write failed", zap.Error(err))
	}
}

// findMarked returns the first item whose body carries the token's marker.
// Search matches the bare token anywhere in the text, so hits without the
// marker are ignored.
func findMarked(items []github.Issue, token string) *github.Issue {
	marker := Marker(token)
	for i := range items {
		if strings.Contains(items[i].Body, marker) {
			return &items[i]
		}
	}
	return nil
}

func fromIssue(i *github.Issue, outcome string) *Result {
	return &Result{URL: i.HTMLURL, Title: i.Title, Number: i.Number, Outcome: outcome}
}

// IdempotencyToken returns the caller's key, or the first 12 hex digits of
// sha1("title|body|assignees").
func IdempotencyToken(req Request) string {
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		return key
	}
	sum := sha1.Sum([]byte(req.Title + "|" + req.Body + "|" + strings.Join(req.Assignees, ",")))
	return hex.EncodeToString(sum[:])[:12]
}

// Marker is the hidden body text that identifies an issue's token
func Marker(token string) string {
	return "<!-- idem:" + token + " -->"
}

// SearchQuery scopes a full-text body search for token to repo
func SearchQuery(repo, token string) string {
	return fmt.Sprintf(`repo:%s in:body "%s" is:issue`, repo, token)
}

// MockURL is the deterministic URL used when no tracker is configured.
// Titles with no usable characters map to MockBaseURL + "issue".
func MockURL(title string) string {
	slug := calendar.Slugify(title)
	if slug == "" {
		slug = "issue"
	}
	return MockBaseURL + slug
}
