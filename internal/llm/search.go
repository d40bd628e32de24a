package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	searchSystemPrompt = "You are a medical research assistant. Provide accurate, evidence-based medical information. Always cite sources when possible and emphasize the importance of consulting healthcare professionals."
	searchMaxTokens    = 300
)

// SearchConfig configures the medical lookup endpoint.
type SearchConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// SearchClient answers short medical questions through an OpenAI-compatible
// search model such as Perplexity's.
type SearchClient struct {
	client *openai.Client
	model  string
}

// NewSearchClient returns nil when no API key is configured, which disables
// the lookup.
func NewSearchClient(cfg SearchConfig) *SearchClient {
	if cfg.APIKey == "" {
		return nil
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "sonar"
	}
	return &SearchClient{client: openai.NewClientWithConfig(oc), model: model}
}

// Search implements core.Searcher.
func (s *SearchClient) Search(ctx context.Context, query string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: searchSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		MaxTokens:   searchMaxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("medical search: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
