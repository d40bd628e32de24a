package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"arogya-intake/internal/core"
)

// GeminiConfig selects the Vertex AI project and model.
type GeminiConfig struct {
	Project  string
	Location string
	Model    string
}

// GeminiClient completes prompts with Gemini on Vertex AI.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Vertex AI backed completion client.  Credentials
// come from the environment's application default credentials.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.Project == "" || cfg.Location == "" {
		return nil, errors.New("gemini: project and location must be set")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.Project,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Complete implements core.Completer.
func (g *GeminiClient) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}
	temp := float32(0.7)
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}
	res, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}
	return res.Text(), nil
}
