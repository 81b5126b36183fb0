package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/post-meeting-agent/errors"
	usecaseerrors "github.com/johnquangdev/post-meeting-agent/internal/usecase/errors"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/issue"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// toAppError maps core errors onto the API error taxonomy
func toAppError(err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	var createErr *issue.CreateError
	switch {
	case stdErrors.As(err, &createErr):
		return errors.ErrTrackerCreateFailed(createErr.StatusCode, createErr.Payload, err)
	case stdErrors.Is(err, usecaseerrors.ErrMissingFilePath):
		return errors.ErrMissingFilePath()
	case stdErrors.Is(err, usecaseerrors.ErrMissingTranscript):
		return errors.ErrMissingTranscript()
	case stdErrors.Is(err, usecaseerrors.ErrInvalidInput):
		return errors.ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, usecaseerrors.ErrRunNotFound):
		return errors.ErrNotFound("Meeting run")
	case stdErrors.Is(err, usecaseerrors.ErrCalendarWrite):
		return errors.ErrCalendarWriteFailed(err)
	case stdErrors.Is(err, usecaseerrors.ErrEmptyTranscript),
		stdErrors.Is(err, usecaseerrors.ErrTranscriptionFailed):
		return errors.ErrAITranscriptionFailed(err)
	case stdErrors.Is(err, usecaseerrors.ErrAnalysisFailed),
		stdErrors.Is(err, usecaseerrors.ErrUnparseableInsights),
		stdErrors.Is(err, usecaseerrors.ErrExtractorUnconfigured):
		return errors.ErrAIAnalysisFailed(err)
	}
	return errors.ErrInternal(err)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := toAppError(err)

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.String("app_code", appErr.Code.String()),
			zap.Error(err),
		)
	}

	info := ""
	if appErr.Raw != nil {
		info = appErr.Raw.Error()
	}

	body := errs{
		Code:    appErr.Code,
		Message: appErr.Message,
		Info:    info,
		Details: appErr.Details,
	}

	return c.JSON(appErr.HTTPCode, body)
}
