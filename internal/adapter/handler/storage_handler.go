package handler

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/post-meeting-agent/errors"
)

// calendarPrefix is where mirrored calendar artifacts live in the bucket
const calendarPrefix = "calendar/"

// ArtifactStore lists and links mirrored artifacts
type ArtifactStore interface {
	ListFiles(ctx context.Context, prefix string) ([]string, error)
	GetFileURL(ctx context.Context, objectName string) (string, error)
}

// Artifacts exposes mirrored calendar artifacts
type Artifacts struct {
	store  ArtifactStore
	logger *zap.Logger
}

// NewArtifacts creates an artifacts handler
func NewArtifacts(store ArtifactStore, logger *zap.Logger) *Artifacts {
	return &Artifacts{store: store, logger: logger}
}

// List returns the mirrored calendar artifacts
func (h *Artifacts) List(c echo.Context) error {
	ctx := c.Request().Context()

	files, err := h.store.ListFiles(ctx, calendarPrefix)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("list", err))
	}
	if files == nil {
		files = []string{}
	}

	if h.logger != nil {
		h.logger.Info("calendar artifacts listed", zap.Int("count", len(files)))
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"files": files,
		"count": len(files),
	})
}

// DownloadURL returns a presigned URL for one mirrored artifact
func (h *Artifacts) DownloadURL(c echo.Context) error {
	name := c.QueryParam("file")
	if name == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Missing file parameter"))
	}
	if !strings.HasPrefix(name, calendarPrefix) {
		name = calendarPrefix + name
	}

	url, err := h.store.GetFileURL(c.Request().Context(), name)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStorageFailed("presign", err))
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"file": name,
		"url":  url,
	})
}
