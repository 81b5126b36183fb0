package issue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/post-meeting-agent/internal/infrastructure/cache"
	"github.com/johnquangdev/post-meeting-agent/internal/infrastructure/external/github"
	usecaseerrors "github.com/johnquangdev/post-meeting-agent/internal/usecase/errors"
	"github.com/johnquangdev/post-meeting-agent/pkg/config"
)

// fakeGitHub keeps issues in memory and answers search by body substring
type fakeGitHub struct {
	mu           sync.Mutex
	issues       []github.Issue
	created      []map[string]interface{}
	searches     int
	searchStatus int
	createStatus int
	createBody   string
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/search/issues":
		f.searches++
		if f.searchStatus != 0 {
			w.WriteHeader(f.searchStatus)
			return
		}
		q := r.URL.Query().Get("q")
		parts := strings.Split(q, `"`)
		var items []github.Issue
		if len(parts) >= 3 {
			for _, is := range f.issues {
				if strings.Contains(is.Body, parts[1]) {
					items = append(items, is)
				}
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"total_count": len(items), "items": items})

	case r.Method == http.MethodPost && r.URL.Path == "/repos/acme/widgets/issues":
		if f.createStatus != 0 {
			w.WriteHeader(f.createStatus)
			w.Write([]byte(f.createBody))
			return
		}
		var in map[string]interface{}
		json.NewDecoder(r.Body).Decode(&in)
		f.created = append(f.created, in)
		n := len(f.issues) + 1
		is := github.Issue{
			Number:  n,
			Title:   in["title"].(string),
			Body:    in["body"].(string),
			HTMLURL: fmt.Sprintf("https://github.com/acme/widgets/issues/%d", n),
		}
		f.issues = append(f.issues, is)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(is)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newServer(t *testing.T, fake *fakeGitHub) config.GitHubConfig {
	t.Helper()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)
	return config.GitHubConfig{Token: "tok", Repo: "acme/widgets", BaseURL: ts.URL}
}

func TestDispatch_MockWhenUnconfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.GitHubConfig
	}{
		{"no token", config.GitHubConfig{Repo: "acme/widgets"}},
		{"no repo", config.GitHubConfig{Token: "tok"}},
		{"nothing", config.GitHubConfig{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(tt.cfg, nil)
			assert.False(t, d.Configured())

			res, err := d.Dispatch(context.Background(), Request{Title: "Send report"})
			require.NoError(t, err)
			assert.Equal(t, "https://github.com/mock/send-report", res.URL)
			assert.Equal(t, "Send report", res.Title)
		})
	}
}

func TestMockURL(t *testing.T) {
	assert.Equal(t, "https://github.com/mock/plan-q3-review", MockURL("Plan Q3, review"))
	assert.Equal(t, "https://github.com/mock/issue", MockURL(""))
}

func TestMockURL_AlwaysWellFormed(t *testing.T) {
	titles := []string{"Reach 100% coverage", "Review #42", "Fix A/B test?", "a&b=c", "   ", "Émile's notes"}
	for _, title := range titles {
		raw := MockURL(title)
		u, err := url.Parse(raw)
		require.NoError(t, err, title)
		assert.Equal(t, "https", u.Scheme, title)
		assert.Equal(t, "github.com", u.Host, title)
		assert.Empty(t, u.Fragment, title)
		assert.Empty(t, u.RawQuery, title)
		assert.Regexp(t, `^/mock/[a-z0-9_-]+$`, u.Path, title)
	}
}

func TestDispatch_IdempotentWithKey(t *testing.T) {
	fake := &fakeGitHub{}
	d := NewDispatcher(newServer(t, fake), nil)
	require.True(t, d.Configured())

	req := Request{Title: "Send report", Body: "details", IdempotencyKey: "task-1234"}
	first, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	second, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.URL, second.URL)
	assert.Equal(t, "created", first.Outcome)
	assert.Equal(t, "found", second.Outcome)
	assert.Len(t, fake.created, 1)
}

func TestDispatch_IdempotentWithDerivedToken(t *testing.T) {
	fake := &fakeGitHub{}
	d := NewDispatcher(newServer(t, fake), nil)

	req := Request{Title: "Send report", Body: "details", Assignees: []string{"bob"}}
	first, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	second, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.URL, second.URL)
	assert.Len(t, fake.created, 1)
}

func TestDispatch_CreatePayload(t *testing.T) {
	fake := &fakeGitHub{}
	d := NewDispatcher(newServer(t, fake), nil)

	_, err := d.Dispatch(context.Background(), Request{
		Title:          "Send report",
		Body:           "Do the thing\n\n  ",
		Labels:         []string{"meeting", "action-item"},
		Assignees:      []string{"", "bob"},
		IdempotencyKey: "k1",
	})
	require.NoError(t, err)
	require.Len(t, fake.created, 1)

	in := fake.created[0]
	assert.Equal(t, "Do the thing\n\n<!-- idem:k1 -->", in["body"])
	assert.Equal(t, []interface{}{"meeting", "action-item"}, in["labels"])
	assert.Equal(t, []interface{}{"bob"}, in["assignees"])
}

func TestDispatch_OmitsEmptyAssignees(t *testing.T) {
	fake := &fakeGitHub{}
	d := NewDispatcher(newServer(t, fake), nil)

	_, err := d.Dispatch(context.Background(), Request{Title: "t", Assignees: []string{""}})
	require.NoError(t, err)
	_, ok := fake.created[0]["assignees"]
	assert.False(t, ok)
	_, ok = fake.created[0]["labels"]
	assert.False(t, ok)
}

func TestDispatch_CreateFailureCarriesUpstream(t *testing.T) {
	fake := &fakeGitHub{createStatus: http.StatusUnprocessableEntity, createBody: `{"message":"Validation Failed"}`}
	d := NewDispatcher(newServer(t, fake), nil)

	_, err := d.Dispatch(context.Background(), Request{Title: "t", IdempotencyKey: "k"})
	require.Error(t, err)

	var createErr *CreateError
	require.True(t, errors.As(err, &createErr))
	assert.Equal(t, http.StatusUnprocessableEntity, createErr.StatusCode)
	assert.Contains(t, createErr.Payload, "Validation Failed")
	assert.True(t, errors.Is(err, usecaseerrors.ErrTrackerCreate))
	assert.Contains(t, err.Error(), "422")
}

func TestDispatch_SearchRejectedStillCreates(t *testing.T) {
	fake := &fakeGitHub{searchStatus: http.StatusForbidden}
	d := NewDispatcher(newServer(t, fake), nil)

	res, err := d.Dispatch(context.Background(), Request{Title: "t", IdempotencyKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/widgets/issues/1", res.URL)
}

func TestDispatch_CacheSkipsSearch(t *testing.T) {
	fake := &fakeGitHub{}
	store := cache.NewMemoryStore()
	defer store.Close()
	d := NewDispatcher(newServer(t, fake), nil, WithCache(store, 0))

	req := Request{Title: "t", IdempotencyKey: "k"}
	first, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	second, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.URL, second.URL)
	assert.Equal(t, "cached", second.Outcome)
	assert.Equal(t, 1, fake.searches)

	raw, ok, err := store.Get(context.Background(), "issue:idem:acme/widgets:k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, first.URL)
}

type countingTracker struct {
	searches, creates int
}

func (c *countingTracker) SearchIssues(context.Context, string) ([]github.Issue, error) {
	c.searches++
	return nil, errors.New("connection refused")
}

func (c *countingTracker) CreateIssue(context.Context, github.CreateIssueRequest) (*github.Issue, error) {
	c.creates++
	return &github.Issue{}, nil
}

func TestDispatch_IgnoresHitsWithoutMarker(t *testing.T) {
	fake := &fakeGitHub{issues: []github.Issue{{
		Number:  99,
		Title:   "Unrelated",
		Body:    "see task-1234 notes",
		HTMLURL: "https://github.com/acme/widgets/issues/99",
	}}}
	d := NewDispatcher(newServer(t, fake), nil)

	res, err := d.Dispatch(context.Background(), Request{Title: "Send report", IdempotencyKey: "task-1234"})
	require.NoError(t, err)
	assert.Equal(t, "created", res.Outcome)
	assert.Equal(t, "Send report", res.Title)
	assert.NotEqual(t, "https://github.com/acme/widgets/issues/99", res.URL)
	require.Len(t, fake.created, 1)
	assert.Contains(t, fake.created[0]["body"], "<!-- idem:task-1234 -->")
}

func TestDispatch_PicksMarkedHit(t *testing.T) {
	fake := &fakeGitHub{issues: []github.Issue{
		{Number: 1, Title: "Mentions it", Body: "task-1234 came up", HTMLURL: "https://github.com/acme/widgets/issues/1"},
		{Number: 2, Title: "Send report", Body: "x\n\n<!-- idem:task-1234 -->", HTMLURL: "https://github.com/acme/widgets/issues/2"},
	}}
	d := NewDispatcher(newServer(t, fake), nil)

	res, err := d.Dispatch(context.Background(), Request{Title: "Send report", IdempotencyKey: "task-1234"})
	require.NoError(t, err)
	assert.Equal(t, "found", res.Outcome)
	assert.Equal(t, "https://github.com/acme/widgets/issues/2", res.URL)
	assert.Empty(t, fake.created)
}

func TestDispatch_SearchTransportErrorIsFatal(t *testing.T) {
	tracker := &countingTracker{}
	d := NewDispatcher(config.GitHubConfig{Token: "tok", Repo: "acme/widgets"}, nil, WithTracker(tracker))

	_, err := d.Dispatch(context.Background(), Request{Title: "t"})
	assert.Error(t, err)
	assert.Equal(t, 1, tracker.searches)
	assert.Equal(t, 0, tracker.creates)
}

func TestIdempotencyToken(t *testing.T) {
	assert.Equal(t, "given", IdempotencyToken(Request{IdempotencyKey: " given "}))

	a := IdempotencyToken(Request{Title: "t", Body: "b", Assignees: []string{"bob"}})
	b := IdempotencyToken(Request{Title: "t", Body: "b", Assignees: []string{"bob"}})
	c := IdempotencyToken(Request{Title: "t", Body: "b", Assignees: []string{"alice"}})
	assert.Len(t, a, 12)
	assert.Regexp(t, `^[0-9a-f]{12}$`, a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, `repo:acme/widgets in:body "abc123" is:issue`, SearchQuery("acme/widgets", "abc123"))
	assert.Equal(t, "<!-- idem:abc123 -->", Marker("abc123"))
}
