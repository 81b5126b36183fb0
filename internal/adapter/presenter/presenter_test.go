package presenter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/post-meeting-agent/internal/adapter/dto"
	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/calendar"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/pipeline"
)

type staticOwners map[string]string

func (s staticOwners) Resolve(owner string) []string {
	if h, ok := s[owner]; ok {
		return []string{h}
	}
	return nil
}

func TestToTaskResponse_NullsWithoutCalendar(t *testing.T) {
	req := &dto.CreateTaskRequest{Title: "Send report"}
	res := &entities.DispatchResult{Title: "Send report", IssueURL: "https://github.com/mock/send-report"}

	out := ToTaskResponse(req, res)
	require.NotNil(t, out)
	assert.Equal(t, "Send report", out.ID)
	assert.Equal(t, "https://github.com/mock/send-report", out.URL)

	raw, err := json.Marshal(out.Raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Send report","issue_url":"https://github.com/mock/send-report","ics_path":null}`, string(raw))
}

func TestToTaskResponse_PrefersIdempotencyKey(t *testing.T) {
	req := &dto.CreateTaskRequest{Title: "Send report", IdempotencyKey: "k-1"}
	out := ToTaskResponse(req, &entities.DispatchResult{IssueURL: "u", ICSPath: "/tmp/a.ics"})
	assert.Equal(t, "k-1", out.ID)
	assert.Equal(t, "Send report", out.Raw.Title)
	require.NotNil(t, out.Raw.ICSPath)
	assert.Equal(t, "/tmp/a.ics", *out.Raw.ICSPath)
}

func TestToEventResponse(t *testing.T) {
	out := ToEventResponse(&dto.CreateEventRequest{Subject: "Retro"}, &calendar.Artifact{Path: "/tmp/retro.ics"})
	assert.Equal(t, "Retro", out.ID)
	assert.Empty(t, out.URL)
	assert.Nil(t, out.Raw.IssueURL)
	assert.Equal(t, "/tmp/retro.ics", *out.Raw.ICSPath)
}

func TestToIngestAudioResponse_TaskOwners(t *testing.T) {
	p := &pipeline.Preview{
		FilePath: "data/meetings/a.wav",
		Insights: entities.Insights{
			Summary: "sync",
			ActionItems: []entities.ActionItem{
				{Title: "a", Owner: "alice"},
				{Title: "b"},
				{Title: "c", Owner: "zed"},
			},
		},
	}

	out := ToIngestAudioResponse(p, staticOwners{"alice": "alice-gh"})
	require.Len(t, out.TaskOwners, 2)
	assert.Equal(t, "alice-gh", *out.TaskOwners[0].GitHubUsername)
	assert.Nil(t, out.TaskOwners[1].GitHubUsername)
	assert.Equal(t, "sync", out.Summary)
	assert.NotNil(t, out.Decisions)
	assert.NotNil(t, out.Actions)
}

func TestToProcessResponse_EmptyActions(t *testing.T) {
	out := ToProcessResponse(entities.PipelineState{entities.StateKeyFilePath: "x.wav", entities.StateKeyRunID: "r"})
	assert.Equal(t, "r", out.RunID)
	assert.Equal(t, "x.wav", out.FilePath)
	assert.NotNil(t, out.Actions)
	assert.NotNil(t, out.Insights.ActionItems)
}
