package presenter

import (
	"time"

	"github.com/johnquangdev/post-meeting-agent/internal/adapter/dto"
	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/pipeline"
)

// OwnerLookup maps an owner to tracker handles
type OwnerLookup interface {
	Resolve(owner string) []string
}

// ToActOnTextResponse converts a text preview
func ToActOnTextResponse(p *pipeline.Preview) *dto.ActOnTextResponse {
	if p == nil {
		return nil
	}
	return &dto.ActOnTextResponse{Insights: normalizeInsights(p.Insights), Actions: previewActions(p.Actions)}
}

// ToIngestAudioResponse converts an audio preview. Owners are listed with
// the handle they resolve to; unresolved owners get a null handle.
func ToIngestAudioResponse(p *pipeline.Preview, owners OwnerLookup) *dto.IngestAudioResponse {
	if p == nil {
		return nil
	}
	insights := normalizeInsights(p.Insights)

	taskOwners := make([]dto.TaskOwner, 0)
	for _, item := range insights.ActionItems {
		if item.Owner == "" {
			continue
		}
		to := dto.TaskOwner{Owner: item.Owner}
		if owners != nil {
			if handles := owners.Resolve(item.Owner); len(handles) > 0 {
				to.GitHubUsername = &handles[0]
			}
		}
		taskOwners = append(taskOwners, to)
	}

	return &dto.IngestAudioResponse{
		FilePath:    p.FilePath,
		Transcript:  p.Transcript,
		Insights:    insights,
		Actions:     previewActions(p.Actions),
		Summary:     insights.Summary,
		Decisions:   insights.Decisions,
		ActionItems: insights.ActionItems,
		TaskOwners:  taskOwners,
	}
}

// ToProcessResponse converts the final state of a full run
func ToProcessResponse(state entities.PipelineState) *dto.ProcessResponse {
	insights, _ := state.Insights()
	actions := state.Actions()
	if actions == nil {
		actions = []entities.DispatchResult{}
	}
	return &dto.ProcessResponse{
		RunID:      state.String(entities.StateKeyRunID),
		FilePath:   state.FilePath(),
		Transcript: state.String(entities.StateKeyTranscript),
		Insights:   normalizeInsights(insights),
		Actions:    actions,
	}
}

// ToRunResponse converts a stored run
func ToRunResponse(run *entities.MeetingRun) *dto.RunResponse {
	if run == nil {
		return nil
	}
	actions := []entities.DispatchResult(run.Actions)
	if actions == nil {
		actions = []entities.DispatchResult{}
	}
	return &dto.RunResponse{
		ID:         run.ID.String(),
		FilePath:   run.FilePath,
		Status:     run.Status,
		Transcript: run.Transcript,
		Insights:   normalizeInsights(run.Insights.Data()),
		Actions:    actions,
		Error:      run.Error,
		DurationMs: run.DurationMs,
		CreatedAt:  run.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToRunResponses converts a page of runs
func ToRunResponses(runs []*entities.MeetingRun) []*dto.RunResponse {
	out := make([]*dto.RunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, ToRunResponse(r))
	}
	return out
}

// normalizeInsights keeps list fields as [] rather than null
func normalizeInsights(in entities.Insights) entities.Insights {
	if in.Decisions == nil {
		in.Decisions = []string{}
	}
	if in.ActionItems == nil {
		in.ActionItems = []entities.ActionItem{}
	}
	return in
}

func previewActions(in []pipeline.PreviewAction) []pipeline.PreviewAction {
	if in == nil {
		return []pipeline.PreviewAction{}
	}
	return in
}
