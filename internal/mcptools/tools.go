package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"arogya-intake/internal/core"
	"arogya-intake/pkg"
)

// --- Input types ---

type DetectEmergencyInput struct {
	Text     string `json:"text" jsonschema:"The user message to screen"`
	Language string `json:"language,omitempty" jsonschema:"Conversation language, defaults to english"`
}

type ToolMessage struct {
	Sender  string `json:"sender" jsonschema:"Either user or assistant"`
	Content string `json:"content" jsonschema:"Message text"`
}

type ExtractSymptomsInput struct {
	Messages []ToolMessage `json:"messages" jsonschema:"Conversation messages in order"`
	Existing []string      `json:"existing,omitempty" jsonschema:"Symptom tags already recorded for the session"`
}

type NextStageInput struct {
	CurrentStage     string `json:"current_stage" jsonschema:"The session's current stage"`
	Text             string `json:"text,omitempty" jsonschema:"The latest user message"`
	MessageCount     int    `json:"message_count,omitempty" jsonschema:"Number of stored messages including the latest"`
	LanguageSelected bool   `json:"language_selected,omitempty" jsonschema:"Set when the language was just chosen"`
	Emergency        bool   `json:"emergency,omitempty" jsonschema:"Set when an emergency keyword was detected"`
}

type ComposeGuidanceInput struct {
	Stage    string `json:"stage" jsonschema:"The stage to compose guidance for"`
	Language string `json:"language,omitempty" jsonschema:"Conversation language, defaults to english"`
	Text     string `json:"text,omitempty" jsonschema:"Optional user message to append"`
}

type LookupRemediesInput struct {
	Symptoms []string `json:"symptoms" jsonschema:"Symptom tags such as cough or fever"`
	Language string   `json:"language,omitempty" jsonschema:"Language for the generic remedy, defaults to english"`
}

type ListLanguagesInput struct{}

// --- Handlers ---

func parseLanguage(s string) (pkg.Language, error) {
	if s == "" {
		return pkg.DefaultLanguage, nil
	}
	lang, ok := pkg.ParseLanguage(s)
	if !ok {
		return "", fmt.Errorf("unsupported language %q", s)
	}
	return lang, nil
}

func DetectEmergency(_ context.Context, _ *mcp.CallToolRequest, input DetectEmergencyInput) (*mcp.CallToolResult, any, error) {
	lang, err := parseLanguage(input.Language)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	kw, found := core.Match(input.Text, lang)
	out := map[string]any{"emergency": found}
	if found {
		out["keyword"] = kw
		out["message"] = core.EmergencyMessage(lang)
	}
	return toolJSON(out)
}

func ExtractSymptoms(_ context.Context, _ *mcp.CallToolRequest, input ExtractSymptomsInput) (*mcp.CallToolResult, any, error) {
	msgs := make([]pkg.Message, 0, len(input.Messages))
	for _, m := range input.Messages {
		msgs = append(msgs, pkg.Message{Role: pkg.Role(m.Sender), Content: m.Content})
	}
	symptoms := core.MergeSymptoms(input.Existing, core.ExtractSymptoms(msgs))
	if symptoms == nil {
		symptoms = []string{}
	}
	return toolJSON(map[string]any{"symptoms": symptoms})
}

func NextStage(_ context.Context, _ *mcp.CallToolRequest, input NextStageInput) (*mcp.CallToolResult, any, error) {
	if input.CurrentStage == "" {
		return toolError("current_stage is required"), nil, nil
	}
	if input.MessageCount < 0 {
		return toolError("message_count must not be negative"), nil, nil
	}
	next := core.NextStage(pkg.Stage(input.CurrentStage), core.Transition{
		Text:             input.Text,
		MessageCount:     input.MessageCount,
		LanguageSelected: input.LanguageSelected,
		Emergency:        input.Emergency,
	})
	return toolJSON(map[string]any{"next_stage": next, "terminal": core.IsTerminal(next)})
}

func ComposeGuidance(_ context.Context, _ *mcp.CallToolRequest, input ComposeGuidanceInput) (*mcp.CallToolResult, any, error) {
	lang, err := parseLanguage(input.Language)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	stage := pkg.Stage(input.Stage)
	out := map[string]any{
		"system":   core.SystemPrompt(lang),
		"guidance": core.ComposeGuidance(stage, lang),
	}
	if input.Text != "" {
		out["prompt"] = core.ComposeTurnPrompt(stage, lang, input.Text)
	}
	return toolJSON(out)
}

func LookupRemedies(_ context.Context, _ *mcp.CallToolRequest, input LookupRemediesInput) (*mcp.CallToolResult, any, error) {
	lang, err := parseLanguage(input.Language)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	remedies := []pkg.TraditionalRemedy{}
	for _, tag := range core.MergeSymptoms(nil, input.Symptoms) {
		remedies = append(remedies, core.Remedies(tag)...)
	}
	if len(remedies) == 0 {
		remedies = append(remedies, core.WellnessRemedy(lang))
	}
	return toolJSON(remedies)
}

func ListLanguages(_ context.Context, _ *mcp.CallToolRequest, _ ListLanguagesInput) (*mcp.CallToolResult, any, error) {
	return toolJSON(core.Languages())
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
