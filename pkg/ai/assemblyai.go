package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	usecaseerrors "github.com/johnquangdev/post-meeting-agent/internal/usecase/errors"
	"github.com/johnquangdev/post-meeting-agent/pkg/config"
)

var errNotReady = errors.New("transcript not ready")

// AssemblyAITranscriber transcribes local audio files with AssemblyAI
type AssemblyAITranscriber struct {
	client       *aai.Client
	apiKey       string
	language     string
	pollInterval time.Duration
	timeout      time.Duration
	logger       *zap.Logger
}

// NewAssemblyAITranscriber creates a transcriber using the provided config.
// If the API key is empty, falls back to ASSEMBLYAI_API_KEY.
func NewAssemblyAITranscriber(cfg *config.AssemblyAIConfig, logger *zap.Logger) *AssemblyAITranscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}

	opts := []aai.ClientOption{aai.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, aai.WithBaseURL(cfg.BaseURL))
	}

	t := &AssemblyAITranscriber{
		client:       aai.NewClientWithOptions(opts...),
		apiKey:       apiKey,
		language:     cfg.Language,
		pollInterval: cfg.PollInterval,
		timeout:      cfg.Timeout,
		logger:       logger,
	}
	if t.pollInterval <= 0 {
		t.pollInterval = 3 * time.Second
	}
	if t.timeout <= 0 {
		t.timeout = 10 * time.Minute
	}
	return t
}

// Transcribe uploads the file at path, submits it and waits for the text
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("%w: ASSEMBLYAI_API_KEY is not set", usecaseerrors.ErrTranscriptionFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open audio: %v", usecaseerrors.ErrTranscriptionFailed, err)
	}
	defer f.Close()

	t.logger.Info("📤 Uploading file to AssemblyAI", zap.String("file_path", path))
	uploadURL, err := t.client.Upload(ctx, f)
	if err != nil {
		return "", fmt.Errorf("%w: upload: %v", usecaseerrors.ErrTranscriptionFailed, err)
	}

	params := &aai.TranscriptOptionalParams{}
	if t.language != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(t.language)
	}
	submitted, err := t.client.Transcripts.SubmitFromURL(ctx, uploadURL, params)
	if err != nil {
		return "", fmt.Errorf("%w: submit: %v", usecaseerrors.ErrTranscriptionFailed, err)
	}
	if submitted.ID == nil {
		return "", fmt.Errorf("%w: submit returned no transcript id", usecaseerrors.ErrTranscriptionFailed)
	}
	transcriptID := *submitted.ID

	t.logger.Info("🎙️ Transcription submitted",
		zap.String("transcript_id", transcriptID),
		zap.String("language", t.language),
	)

	var text string
	poll := func() error {
		tr, err := t.client.Transcripts.Get(ctx, transcriptID)
		if err != nil {
			return backoff.Permanent(err)
		}
		switch tr.Status {
		case aai.TranscriptStatusCompleted:
			text = deref(tr.Text)
			return nil
		case aai.TranscriptStatusError:
			return backoff.Permanent(fmt.Errorf("assemblyai reported error: %s", deref(tr.Error)))
		default:
			return errNotReady
		}
	}

	bo := backoff.WithContext(backoff.NewConstantBackOff(t.pollInterval), ctx)
	if err := backoff.Retry(poll, bo); err != nil {
		t.logger.Error("❌ Transcription failed",
			zap.String("transcript_id", transcriptID),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", usecaseerrors.ErrTranscriptionFailed, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", usecaseerrors.ErrEmptyTranscript
	}

	t.logger.Info("✅ Transcription completed",
		zap.String("transcript_id", transcriptID),
		zap.Int("transcript_chars", len(text)),
	)
	return text, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
