package presenter

import (
	"github.com/johnquangdev/post-meeting-agent/internal/adapter/dto"
	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/calendar"
)

// ToTaskResponse converts a dispatch result into the task envelope. The id is
// the caller's idempotency key, or the title when none was sent.
func ToTaskResponse(req *dto.CreateTaskRequest, res *entities.DispatchResult) *dto.ActionResponse {
	if req == nil || res == nil {
		return nil
	}
	title := res.Title
	if title == "" {
		title = req.Title
	}
	return &dto.ActionResponse{
		ID:  firstNonEmpty(req.IdempotencyKey, req.Title),
		URL: res.IssueURL,
		Raw: dto.ActionRaw{
			Title:    title,
			IssueURL: optional(res.IssueURL),
			ICSPath:  optional(res.ICSPath),
			ICSURL:   res.ICSURL,
			DueDate:  res.DueDate,
		},
	}
}

// ToEventResponse converts a written artifact into the event envelope
func ToEventResponse(req *dto.CreateEventRequest, art *calendar.Artifact) *dto.ActionResponse {
	if req == nil || art == nil {
		return nil
	}
	return &dto.ActionResponse{
		ID:  firstNonEmpty(req.IdempotencyKey, req.Subject),
		URL: "",
		Raw: dto.ActionRaw{
			Title:   req.Subject,
			ICSPath: optional(art.Path),
			ICSURL:  art.URL,
		},
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
