package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	usecaseerrors "github.com/johnquangdev/post-meeting-agent/internal/usecase/errors"
)

// Completer sends a transcript to a language model and returns its raw reply
type Completer interface {
	AnalyzeTranscript(ctx context.Context, transcript string) (string, error)
}

// Analyzer extracts Insights from transcripts
type Analyzer struct {
	llm    Completer
	parser *Parser
	logger *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil completer makes every call fail
// with ErrExtractorUnconfigured.
func NewAnalyzer(llm Completer, parser *Parser, logger *zap.Logger) *Analyzer {
	if parser == nil {
		parser = NewParser(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{llm: llm, parser: parser, logger: logger}
}

// Extract returns the normalized insights of transcript
func (a *Analyzer) Extract(ctx context.Context, transcript string) (entities.Insights, error) {
	if strings.TrimSpace(transcript) == "" {
		return entities.Insights{}, usecaseerrors.ErrMissingTranscript
	}
	if a.llm == nil {
		return entities.Insights{}, usecaseerrors.ErrExtractorUnconfigured
	}

	a.logger.Info("🧠 Extracting insights", zap.Int("transcript_chars", len(transcript)))

	content, err := a.llm.AnalyzeTranscript(ctx, transcript)
	if err != nil {
		a.logger.Error("❌ Insight extraction failed", zap.Error(err))
		return entities.Insights{}, fmt.Errorf("%w: %v", usecaseerrors.ErrAnalysisFailed, err)
	}

	insights, err := a.parser.ParseInsights(content)
	if err != nil {
		if errors.Is(err, usecaseerrors.ErrUnparseableInsights) {
			a.logger.Error("❌ Model response was not JSON",
				zap.String("content_preview", preview(content, 200)),
			)
		}
		return entities.Insights{}, err
	}

	a.logger.Info("✅ Insights extracted",
		zap.Int("decisions", len(insights.Decisions)),
		zap.Int("action_items", len(insights.ActionItems)),
	)
	return insights, nil
}

// preview cuts s to at most n bytes without splitting a rune
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
