package dto

import (
	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/pipeline"
)

// TranscriptRequest carries raw meeting transcript text
type TranscriptRequest struct {
	Transcript string `json:"transcript" validate:"required"`
}

// ListRunsRequest holds pagination query params for run history
type ListRunsRequest struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ActOnTextResponse is insights plus a preview of the actions
type ActOnTextResponse struct {
	Insights entities.Insights        `json:"insights"`
	Actions  []pipeline.PreviewAction `json:"actions"`
}

// TaskOwner pairs an extracted owner with the tracker handle it resolves to
type TaskOwner struct {
	Owner          string  `json:"owner"`
	GitHubUsername *string `json:"github_username"`
}

// IngestAudioResponse is the result of transcribing and analyzing an upload
type IngestAudioResponse struct {
	FilePath    string                   `json:"file_path"`
	Transcript  string                   `json:"transcript"`
	Insights    entities.Insights        `json:"insights"`
	Actions     []pipeline.PreviewAction `json:"actions"`
	Summary     string                   `json:"summary"`
	Decisions   []string                 `json:"decisions"`
	ActionItems []entities.ActionItem    `json:"action_items"`
	TaskOwners  []TaskOwner              `json:"task_owners"`
}

// ProcessResponse is the final pipeline state of a full run
type ProcessResponse struct {
	RunID      string                    `json:"run_id"`
	FilePath   string                    `json:"file_path"`
	Transcript string                    `json:"transcript"`
	Insights   entities.Insights         `json:"insights"`
	Actions    []entities.DispatchResult `json:"actions"`
}

// RunResponse is one stored pipeline run
type RunResponse struct {
	ID         string                    `json:"id"`
	FilePath   string                    `json:"file_path"`
	Status     string                    `json:"status"`
	Transcript string                    `json:"transcript,omitempty"`
	Insights   entities.Insights         `json:"insights"`
	Actions    []entities.DispatchResult `json:"actions"`
	Error      string                    `json:"error,omitempty"`
	DurationMs int64                     `json:"duration_ms"`
	CreatedAt  string                    `json:"created_at"`
}
