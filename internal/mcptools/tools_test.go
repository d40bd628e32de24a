package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"arogya-intake/internal/core"
	"arogya-intake/pkg"
)

// connect starts the server on an in-memory transport and returns a client
// session.
func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	if _, err := New("test").Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func call(t *testing.T, s *mcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	res, err := s.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if len(res.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, res.Content[0])
	}
	if res.IsError {
		t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
	}
	if err := json.Unmarshal([]byte(tc.Text), out); err != nil {
		t.Fatalf("CallTool(%s): decode %q: %v", name, tc.Text, err)
	}
}

func callExpectError(t *testing.T, s *mcp.ClientSession, name string, args map[string]any) {
	t.Helper()
	res, err := s.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return
	}
	if !res.IsError {
		t.Fatalf("CallTool(%s): expected error result", name)
	}
}

func TestToolsRegistered(t *testing.T) {
	s := connect(t)
	res, err := s.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	want := map[string]bool{
		"detect_emergency": false, "extract_symptoms": false, "next_stage": false,
		"compose_guidance": false, "lookup_remedies": false, "list_languages": false,
	}
	for _, tool := range res.Tools {
		want[tool.Name] = true
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %s not registered", name)
		}
	}
}

func TestDetectEmergencyTool(t *testing.T) {
	s := connect(t)
	var out struct {
		Emergency bool                 `json:"emergency"`
		Keyword   pkg.EmergencyKeyword `json:"keyword"`
	}
	call(t, s, "detect_emergency", map[string]any{"text": "Sudden weakness on one side"}, &out)
	if !out.Emergency || out.Keyword.Category != "neurological" {
		t.Fatalf("out = %+v", out)
	}

	out.Emergency = false
	call(t, s, "detect_emergency", map[string]any{"text": "chest pain", "language": "tamil"}, &out)
	if out.Emergency {
		t.Fatal("tamil has no keywords and should not match")
	}
	callExpectError(t, s, "detect_emergency", map[string]any{"text": "x", "language": "elvish"})
}

func TestExtractSymptomsTool(t *testing.T) {
	s := connect(t)
	var out struct {
		Symptoms []string `json:"symptoms"`
	}
	call(t, s, "extract_symptoms", map[string]any{
		"messages": []map[string]string{
			{"sender": "user", "content": "I have a bad cough"},
			{"sender": "assistant", "content": "Any fever?"},
		},
		"existing": []string{"rash"},
	}, &out)
	if len(out.Symptoms) != 2 || out.Symptoms[0] != "rash" || out.Symptoms[1] != "cough" {
		t.Fatalf("symptoms = %v", out.Symptoms)
	}
}

func TestNextStageTool(t *testing.T) {
	s := connect(t)
	var out struct {
		NextStage pkg.Stage `json:"next_stage"`
		Terminal  bool      `json:"terminal"`
	}
	call(t, s, "next_stage", map[string]any{"current_stage": "detailed_analysis", "message_count": 9}, &out)
	if out.NextStage != pkg.StageHealthGuideGeneration || out.Terminal {
		t.Fatalf("out = %+v", out)
	}
	call(t, s, "next_stage", map[string]any{"current_stage": "greeting", "emergency": true}, &out)
	if out.NextStage != pkg.StageEmergencyAlert || !out.Terminal {
		t.Fatalf("out = %+v", out)
	}
	callExpectError(t, s, "next_stage", map[string]any{"current_stage": ""})
}

func TestComposeGuidanceTool(t *testing.T) {
	s := connect(t)
	var out map[string]string
	call(t, s, "compose_guidance", map[string]any{"stage": "symptom_inquiry", "language": "hindi", "text": "बुखार"}, &out)
	if out["guidance"] != core.ComposeGuidance(pkg.StageSymptomInquiry, pkg.LanguageHindi) {
		t.Errorf("guidance = %q", out["guidance"])
	}
	if out["prompt"] != core.ComposeTurnPrompt(pkg.StageSymptomInquiry, pkg.LanguageHindi, "बुखार") {
		t.Errorf("prompt = %q", out["prompt"])
	}
}

func TestLookupRemediesTool(t *testing.T) {
	s := connect(t)
	var out []pkg.TraditionalRemedy
	call(t, s, "lookup_remedies", map[string]any{"symptoms": []string{"cough", "cough"}}, &out)
	if len(out) != 1 || out[0].Name != "Haldi Doodh (Golden Milk)" {
		t.Fatalf("remedies = %+v", out)
	}
	call(t, s, "lookup_remedies", map[string]any{"symptoms": []string{"dizziness"}, "language": "marathi"}, &out)
	if len(out) != 1 || out[0].Language != pkg.LanguageMarathi {
		t.Fatalf("fallback remedy = %+v", out)
	}
}

func TestListLanguagesTool(t *testing.T) {
	s := connect(t)
	var out []core.LanguageInfo
	call(t, s, "list_languages", map[string]any{}, &out)
	if len(out) != len(pkg.AllLanguages) {
		t.Fatalf("got %d languages", len(out))
	}
}
