package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/post-meeting-agent/errors"
	"github.com/johnquangdev/post-meeting-agent/internal/adapter/dto"
	"github.com/johnquangdev/post-meeting-agent/internal/adapter/presenter"
	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/calendar"
)

// naiveLayout is accepted for event times sent without a zone; they are read as UTC
const naiveLayout = "2006-01-02T15:04:05"

// ItemDispatcher dispatches one action item
type ItemDispatcher interface {
	DispatchItem(ctx context.Context, item entities.ActionItem) (*entities.DispatchResult, error)
}

// EventEmitter writes calendar artifacts
type EventEmitter interface {
	EmitRange(ctx context.Context, title string, start, end time.Time) (*calendar.Artifact, error)
}

// Action handles the explicit task and event endpoints
type Action struct {
	items   ItemDispatcher
	emitter EventEmitter
	logger  *zap.Logger
}

// NewAction creates an action handler
func NewAction(items ItemDispatcher, emitter EventEmitter, logger *zap.Logger) *Action {
	return &Action{items: items, emitter: emitter, logger: logger}
}

// CreateTask creates (or finds) the tracker issue for an item and writes a
// calendar artifact when its due date resolves
func (h *Action) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	due := req.Due
	if req.DueDate != "" {
		due = req.DueDate
	}
	item := entities.ActionItem{
		Title:          req.Title,
		Owner:          req.Owner,
		Due:            due,
		Details:        req.Details,
		IdempotencyKey: req.IdempotencyKey,
	}

	res, err := h.items.DispatchItem(c.Request().Context(), item)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToTaskResponse(&req, res))
}

// CreateEvent writes a calendar artifact only; no issue is created
func (h *Action) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	start, err := parseEventTime(req.Start)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid start time"))
	}
	var end time.Time
	if req.End != "" {
		if end, err = parseEventTime(req.End); err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid end time"))
		}
	}

	art, err := h.emitter.EmitRange(c.Request().Context(), req.Subject, start, end)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrCalendarWriteFailed(err))
	}
	return HandleSuccess(h.logger, c, presenter.ToEventResponse(&req, art))
}

// zonedLayouts cover RFC 3339 and offsets written without a colon
var zonedLayouts = []string{time.RFC3339, "2006-01-02T15:04:05Z0700"}

// parseEventTime accepts a zoned date-time, or a zone-less one read as UTC
// with fractional seconds dropped. Anything else is rejected.
func parseEventTime(s string) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	t, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.Truncate(time.Second), nil
}
