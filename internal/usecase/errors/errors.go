package errors

import "errors"

// Input errors
var (
	ErrMissingFilePath   = errors.New("file_path missing in initial state")
	ErrMissingTranscript = errors.New("transcript missing in state")
	ErrMissingInsights   = errors.New("insights missing in state")
	ErrInvalidInput      = errors.New("invalid input")
)

// Collaborator errors
var (
	ErrEmptyTranscript       = errors.New("transcription produced no text")
	ErrTranscriptionFailed   = errors.New("transcription failed")
	ErrAnalysisFailed        = errors.New("insight extraction failed")
	ErrUnparseableInsights   = errors.New("could not parse JSON from model response")
	ErrExtractorUnconfigured = errors.New("insight extractor not configured")
)

// Dispatch errors
var (
	ErrCalendarWrite = errors.New("failed to write calendar event")
	ErrTrackerCreate = errors.New("issue tracker create failed")
)

// Persistence errors
var (
	ErrRunNotFound = errors.New("meeting run not found")
)
