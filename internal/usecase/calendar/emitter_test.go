package calendar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/post-meeting-agent/pkg/idgen"
)

var fixedNow = time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)

func newTestEmitter(t *testing.T, opts ...Option) (*Emitter, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "tmp")
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(&idgen.Sequence{UIDs: []string{"1a2b3c4d-0000-4000-8000-000000000000@postmeeting-agent"}}),
	}
	return NewEmitter(dir, nil, append(base, opts...)...), dir
}

// parseICS reads content with an iCalendar parser and returns its only event
func parseICS(t *testing.T, content string) *ics.VEvent {
	t.Helper()
	cal, err := ics.ParseCalendar(strings.NewReader(content))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)
	return events[0]
}

func propValue(ev *ics.VEvent, name ics.ComponentProperty) string {
	p := ev.GetProperty(name)
	if p == nil {
		return ""
	}
	return p.Value
}

func TestEmit_RoundTrip(t *testing.T) {
	e, dir := newTestEmitter(t)
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	artifact, err := e.Emit(context.Background(), "Send report, v2; final", start)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(artifact.Path))
	assert.Equal(t, "send-report-v2-final-1a2b3c4d.ics", filepath.Base(artifact.Path))
	assert.Equal(t, dir, filepath.Dir(artifact.Path))

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//PostMeetingAgent//EN\r\n"))
	assert.True(t, strings.HasSuffix(strings.TrimRight(content, "\r\n"), "END:VEVENT\r\nEND:VCALENDAR"))

	ev := parseICS(t, content)
	var order []string
	for _, p := range ev.Properties {
		order = append(order, p.IANAToken)
	}
	assert.Equal(t, []string{"UID", "DTSTAMP", "DTSTART", "DTEND", "SUMMARY"}, order)
	assert.Equal(t, "1a2b3c4d-0000-4000-8000-000000000000@postmeeting-agent", ev.Id())
	assert.Equal(t, ics.ToText("Send report, v2; final"), propValue(ev, ics.ComponentPropertySummary))
	assert.Equal(t, "20240510T090000Z", propValue(ev, ics.ComponentPropertyDtStart))
	assert.Equal(t, "20240510T093000Z", propValue(ev, ics.ComponentPropertyDtEnd))
	assert.Equal(t, "20240508T120000Z", propValue(ev, ics.ComponentPropertyDtstamp))

	parsed, err := ev.GetStartAt()
	require.NoError(t, err)
	assert.True(t, parsed.Equal(start))
}

func TestEmit_ConvertsStartToUTC(t *testing.T) {
	e, _ := newTestEmitter(t, WithDuration(time.Hour))
	loc := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, loc)

	artifact, err := e.Emit(context.Background(), "Standup", start)
	require.NoError(t, err)

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	ev := parseICS(t, string(data))
	assert.Equal(t, "20240510T033000Z", propValue(ev, ics.ComponentPropertyDtStart))
	assert.Equal(t, "20240510T043000Z", propValue(ev, ics.ComponentPropertyDtEnd))
}

func TestEmit_ZeroStartDefaultsToTomorrowNine(t *testing.T) {
	e, _ := newTestEmitter(t)

	artifact, err := e.Emit(context.Background(), "Follow-up", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 9, 9, 0, 0, 0, time.UTC), artifact.Start)
}

func TestEmit_EmptySlugUsesEvent(t *testing.T) {
	e, _ := newTestEmitter(t)

	artifact, err := e.Emit(context.Background(), "!!!", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "event-1a2b3c4d.ics", filepath.Base(artifact.Path))
}

func TestEmit_RepeatedTitlesDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	e := NewEmitter(dir, nil)

	a, err := e.Emit(context.Background(), "Sync", fixedNow)
	require.NoError(t, err)
	b, err := e.Emit(context.Background(), "Sync", fixedNow)
	require.NoError(t, err)
	assert.NotEqual(t, a.Path, b.Path)
}

func TestEmitRange_ExplicitEnd(t *testing.T) {
	e, _ := newTestEmitter(t)
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	artifact, err := e.EmitRange(context.Background(), "Review", start, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, start.Add(2*time.Hour), artifact.End)

	artifact, err = e.EmitRange(context.Background(), "Review", start, start.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, start.Add(DefaultDuration), artifact.End)
}

func TestEmit_WriteErrorPropagates(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	e := NewEmitter(filepath.Join(blocker, "sub"), nil)
	_, err := e.Emit(context.Background(), "Sync", fixedNow)
	assert.Error(t, err)
}

type fakeMirror struct {
	objects map[string][]byte
	err     error
}

func (m *fakeMirror) Upload(_ context.Context, objectName string, data []byte, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[objectName] = data
	return "https://files.example.com/" + objectName, nil
}

func TestEmit_Mirror(t *testing.T) {
	mirror := &fakeMirror{}
	e, _ := newTestEmitter(t, WithMirror(mirror))

	artifact, err := e.Emit(context.Background(), "Sync", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/calendar/sync-1a2b3c4d.ics", artifact.URL)

	local, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, local, mirror.objects["calendar/sync-1a2b3c4d.ics"])
}

func TestEmit_MirrorFailureIsNotFatal(t *testing.T) {
	e, _ := newTestEmitter(t, WithMirror(&fakeMirror{err: errors.New("bucket gone")}))

	artifact, err := e.Emit(context.Background(), "Sync", fixedNow)
	require.NoError(t, err)
	assert.Empty(t, artifact.URL)
	assert.FileExists(t, artifact.Path)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Send report":        "send-report",
		"  Q3 Plan: Draft  ": "q3-plan-draft",
		"already-slug_ok":    "already-slug_ok",
		"---":                "",
		"Émile's notes":      "mile-s-notes",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
