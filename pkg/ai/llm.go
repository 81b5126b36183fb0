package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/johnquangdev/post-meeting-agent/pkg/config"
)

const insightPrompt = `You are a meeting assistant. Analyze this transcript and extract:

1. Summary
2. Decisions
3. Action items with:
   - Title
   - Action Item Id
   - Owner (if mentioned)
   - Due date (dd-mm-yyyy format)
   - Priority = medium
   - Details

Return JSON in this format:
{
  "summary": "...",
  "decisions": [...],
  "action_items": [...]
}

Transcript:
%s
`

// LLMClient asks an OpenAI-compatible chat model to analyze transcripts.
// Azure deployments and plain OpenAI-style endpoints (OpenAI, Groq) are
// both supported.
type LLMClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewLLMClient creates an LLM client from cfg. It returns an error when no
// API key is configured.
func NewLLMClient(cfg *config.LLMConfig) (*LLMClient, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is not set")
	}

	var clientCfg openai.ClientConfig
	switch cfg.Provider {
	case "azure":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("LLM_BASE_URL is required for azure")
		}
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
	default:
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
	}

	return &LLMClient{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// AnalyzeTranscript sends the insight prompt and returns the model's reply
func (c *LLMClient) AnalyzeTranscript(ctx context.Context, transcript string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(insightPrompt, transcript)},
		},
	}
	if c.maxTokens > 0 {
		req.MaxCompletionTokens = c.maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Message.Content, nil
}
