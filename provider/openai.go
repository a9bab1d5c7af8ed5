package provider

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	strex "github.com/FunnySaltyFish/android-kmp-cmp-string-extractor"
)

// OpenAIProvider implements AIProvider against an OpenAI-compatible
// chat-completion endpoint.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // API key (uses OPENAI_API_KEY env var if empty)
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL for compatible endpoints (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	config := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate submits one rendered batch prompt and parses the structured
// reply. The reply must carry one translation per submitted item; count and
// identifier reconciliation happen in the Translator, but a reply that is
// not parseable at all fails here.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) ([]TranslationResult, error) {
	if len(req.Items) == 0 {
		return []TranslationResult{}, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &strex.TranslationError{
			Message:   "chat completion call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &strex.TranslationError{
			Message:   "empty response from provider",
			Retryable: true,
		}
	}

	return parseResponse(resp.Choices[0].Message.Content)
}

// parseResponse extracts the translations array from the model reply.
// Accepts the documented {"translations": [...]} object, a bare array, or
// either of those wrapped in a Markdown code fence.
func parseResponse(content string) ([]TranslationResult, error) {
	content = stripCodeFence(content)

	var obj struct {
		Translations []TranslationResult `json:"translations"`
	}
	if err := json.Unmarshal([]byte(content), &obj); err == nil && obj.Translations != nil {
		return obj.Translations, nil
	}

	var arr []TranslationResult
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return arr, nil
	}

	return nil, &strex.TranslationError{
		Message:   "reply is not a translations JSON object",
		Retryable: false,
	}
}

// stripCodeFence removes a surrounding ```json ... ``` fence, which some
// models emit despite the JSON response format.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements AIProvider
var _ AIProvider = (*OpenAIProvider)(nil)
