package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/post-meeting-agent/errors"
	"github.com/johnquangdev/post-meeting-agent/internal/adapter/dto"
	"github.com/johnquangdev/post-meeting-agent/internal/adapter/dto/common"
	"github.com/johnquangdev/post-meeting-agent/internal/adapter/presenter"
	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/pipeline"
)

const defaultRunsPageSize = 20

// MeetingService runs the meeting pipeline
type MeetingService interface {
	Process(ctx context.Context, filePath string) (entities.PipelineState, error)
	Preview(ctx context.Context, filePath string) (*pipeline.Preview, error)
	AnalyzeText(ctx context.Context, transcript string) (entities.Insights, error)
	PreviewText(ctx context.Context, transcript string) (*pipeline.Preview, error)
	GetRun(ctx context.Context, id uuid.UUID) (*entities.MeetingRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*entities.MeetingRun, error)
}

// Meeting handles transcript and audio endpoints
type Meeting struct {
	svc       MeetingService
	owners    presenter.OwnerLookup
	uploadDir string
	logger    *zap.Logger
}

// NewMeeting creates a meeting handler. Uploads are saved under uploadDir.
func NewMeeting(svc MeetingService, owners presenter.OwnerLookup, uploadDir string, logger *zap.Logger) *Meeting {
	return &Meeting{svc: svc, owners: owners, uploadDir: uploadDir, logger: logger}
}

// AnalyzeText extracts insights from transcript text
func (h *Meeting) AnalyzeText(c echo.Context) error {
	var req dto.TranscriptRequest
	if err := h.bindTranscript(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	insights, err := h.svc.AnalyzeText(c.Request().Context(), req.Transcript)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, insights)
}

// ActOnText returns insights with a preview of the actions. Nothing is created.
func (h *Meeting) ActOnText(c echo.Context) error {
	var req dto.TranscriptRequest
	if err := h.bindTranscript(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	preview, err := h.svc.PreviewText(c.Request().Context(), req.Transcript)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToActOnTextResponse(preview))
}

// IngestAudio saves the upload, transcribes and analyzes it, and previews the actions
func (h *Meeting) IngestAudio(c echo.Context) error {
	path, err := h.saveUpload(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	preview, err := h.svc.Preview(c.Request().Context(), path)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToIngestAudioResponse(preview, h.owners))
}

// Process saves the upload and runs the full pipeline, dispatching every action item
func (h *Meeting) Process(c echo.Context) error {
	path, err := h.saveUpload(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	state, err := h.svc.Process(c.Request().Context(), path)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToProcessResponse(state))
}

// GetRun returns one stored run
func (h *Meeting) GetRun(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid run id"))
	}

	run, err := h.svc.GetRun(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToRunResponse(run))
}

// ListRuns returns a page of stored runs, newest first
func (h *Meeting) ListRuns(c echo.Context) error {
	var req dto.ListRunsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = defaultRunsPageSize
	}

	runs, err := h.svc.ListRuns(c.Request().Context(), req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, common.ListResponse{
		Data: presenter.ToRunResponses(runs),
		Pagination: &common.PaginationResponse{
			Page:     req.Page,
			PageSize: req.PageSize,
			Count:    len(runs),
		},
	})
}

func (h *Meeting) bindTranscript(c echo.Context, req *dto.TranscriptRequest) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidPayload()
	}
	if err := c.Validate(req); err != nil {
		return errors.ErrMissingTranscript()
	}
	return nil
}

// saveUpload copies the multipart "file" field to uploadDir/<base name>
func (h *Meeting) saveUpload(c echo.Context) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", errors.ErrMissingFilePath()
	}
	name := filepath.Base(fh.Filename)
	if name == "." || name == string(filepath.Separator) {
		return "", errors.ErrInvalidArgument("Invalid upload file name")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", errors.ErrStorageFailed("create upload dir", err)
	}
	path := filepath.Join(h.uploadDir, name)
	if err := copyUpload(fh, path); err != nil {
		return "", errors.ErrStorageFailed("save upload", err)
	}

	if h.logger != nil {
		h.logger.Info("📥 Meeting upload saved",
			zap.String("file_path", path),
			zap.Int64("size", fh.Size),
		)
	}
	return path, nil
}

func copyUpload(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return out.Close()
}
