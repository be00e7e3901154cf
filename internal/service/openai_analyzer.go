package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/models"
)

const analyzerSystemPrompt = `You are a quality engineer analysing defect data from an electronics assembly line.
You receive a JSON digest of recent inspection checklists and a question in Portuguese or English.
Answer ONLY with a JSON object of the form:
{"summary": string, "tips": [string], "visualization_data": [{"chart_type": "bar"|"line"|"pie"|"doughnut", "title": string, "labels": [string], "datasets": [{"label": string, "data": [number]}]}]}
Base every number on the digest. Use an empty list when no chart helps.`

// OpenAIAnalyzerConfig configures the OpenAI-compatible analyzer.
type OpenAIAnalyzerConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAIAnalyzer implements Analyzer with a chat completion in JSON mode.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIAnalyzer returns nil when no API key is configured.
func NewOpenAIAnalyzer(cfg OpenAIAnalyzerConfig, logger *zap.Logger) *OpenAIAnalyzer {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIAnalyzer{client: openai.NewClientWithConfig(clientCfg), model: model, logger: logger}
}

// Analyze sends the digest and question and decodes the JSON answer.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, query string, digest models.DefectDigest) (*models.AnalysisResponse, error) {
	payload, err := json.Marshal(digest)
	if err != nil {
		return nil, fmt.Errorf("encode digest: %w", err)
	}
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Digest:\n%s\n\nQuestion: %s", payload, query)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}
	a.logger.Debug("analysis completed", zap.String("model", a.model), zap.String("finish_reason", string(resp.Choices[0].FinishReason)))

	var out models.AnalysisResponse
	if err := json.Unmarshal([]byte(stripFence(resp.Choices[0].Message.Content)), &out); err != nil {
		return nil, fmt.Errorf("decode analysis answer: %w", err)
	}
	return &out, nil
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
