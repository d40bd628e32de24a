package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"arogya-intake/internal/conversation"
	"arogya-intake/internal/core"
	"arogya-intake/internal/db"
	"arogya-intake/pkg"
)

type stubLLM struct {
	reply string
	err   error
}

func (s stubLLM) Complete(context.Context, core.CompletionRequest) (string, error) {
	return s.reply, s.err
}

type stubSearcher struct{ answer string }

func (s stubSearcher) Search(context.Context, string) (string, error) { return s.answer, nil }

type testEnv struct {
	srv   *Server
	store *db.MemoryStore
	hub   *Hub
}

func newEnv(t *testing.T, deps conversation.Deps) *testEnv {
	t.Helper()
	store := db.NewMemoryStore()
	hub := NewHub()
	deps.Store = store
	deps.Notifier = hub
	if deps.LLM == nil {
		deps.LLM = stubLLM{reply: "Tell me more about it."}
	}
	return &testEnv{srv: NewServer(conversation.NewService(deps), nil, hub), store: store, hub: hub}
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, response) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)

	var out response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code, out
}

func (e *testEnv) createSession(t *testing.T) pkg.Session {
	t.Helper()
	code, res := e.do(t, http.MethodPost, "/api/sessions", map[string]string{"user_id": "u-1"})
	if code != http.StatusCreated || !res.Success {
		t.Fatalf("create session: %d %+v", code, res)
	}
	var sess pkg.Session
	if err := json.Unmarshal(res.Data, &sess); err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestHealthAndRoot(t *testing.T) {
	e := newEnv(t, conversation.Deps{})
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if code, res := e.do(t, http.MethodGet, "/api/", nil); code != http.StatusOK || !res.Success {
		t.Fatalf("root = %d %+v", code, res)
	}
	code, res := e.do(t, http.MethodGet, "/api/languages", nil)
	if code != http.StatusOK {
		t.Fatalf("languages = %d", code)
	}
	var langs []core.LanguageInfo
	if err := json.Unmarshal(res.Data, &langs); err != nil || len(langs) != 8 {
		t.Fatalf("languages = %v, %v", langs, err)
	}
}

func TestConversationFlow(t *testing.T) {
	e := newEnv(t, conversation.Deps{})
	sess := e.createSession(t)
	base := "/api/sessions/" + sess.ID

	code, res := e.do(t, http.MethodPost, base+"/language", map[string]string{"language": "Hindi"})
	if code != http.StatusOK {
		t.Fatalf("select language = %d %+v", code, res)
	}

	code, res = e.do(t, http.MethodPost, base+"/messages", map[string]string{"content": "मुझे खांसी है"})
	if code != http.StatusOK {
		t.Fatalf("post message = %d %+v", code, res)
	}
	var turn struct {
		Message        pkg.Message `json:"message"`
		Session        pkg.Session `json:"session"`
		EmergencyAlert bool        `json:"emergency_alert"`
	}
	if err := json.Unmarshal(res.Data, &turn); err != nil {
		t.Fatal(err)
	}
	if turn.Message.Role != pkg.RoleAssistant || turn.Session.Stage != pkg.StageSymptomInquiry || turn.EmergencyAlert {
		t.Fatalf("turn = %+v", turn)
	}

	code, res = e.do(t, http.MethodGet, base+"/messages", nil)
	if code != http.StatusOK {
		t.Fatalf("list = %d", code)
	}
	var msgs []pkg.Message
	if err := json.Unmarshal(res.Data, &msgs); err != nil || len(msgs) != 3 {
		t.Fatalf("messages = %d, %v", len(msgs), err)
	}

	code, _ = e.do(t, http.MethodGet, base+"/health-guide", nil)
	if code != http.StatusNotFound {
		t.Fatalf("guide before generation = %d, want 404", code)
	}
}

func TestEmergencyResponse(t *testing.T) {
	e := newEnv(t, conversation.Deps{})
	sess := e.createSession(t)
	code, res := e.do(t, http.MethodPost, "/api/sessions/"+sess.ID+"/messages", map[string]string{"content": "I have chest pain"})
	if code != http.StatusOK {
		t.Fatalf("post = %d", code)
	}
	var turn struct {
		EmergencyAlert bool        `json:"emergency_alert"`
		Session        pkg.Session `json:"session"`
	}
	if err := json.Unmarshal(res.Data, &turn); err != nil {
		t.Fatal(err)
	}
	if !turn.EmergencyAlert || turn.Session.Stage != pkg.StageEmergencyAlert {
		t.Fatalf("turn = %+v", turn)
	}
}

func TestErrorMapping(t *testing.T) {
	e := newEnv(t, conversation.Deps{})
	sess := e.createSession(t)
	base := "/api/sessions/" + sess.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown session", http.MethodGet, "/api/sessions/nope", nil, http.StatusNotFound},
		{"empty message", http.MethodPost, base + "/messages", map[string]string{"content": " "}, http.StatusBadRequest},
		{"bad language", http.MethodPost, base + "/language", map[string]string{"language": "latin"}, http.StatusBadRequest},
		{"bad rating", http.MethodPost, base + "/feedback", map[string]int{"rating": 9}, http.StatusBadRequest},
		{"no search", http.MethodGet, "/api/medical-info?q=fever", nil, http.StatusServiceUnavailable},
		{"missing query", http.MethodGet, "/api/medical-info", nil, http.StatusBadRequest},
		{"reports disabled", http.MethodPost, base + "/generate-pdf", nil, http.StatusServiceUnavailable},
		{"download disabled", http.MethodGet, "/api/reports/x.pdf", nil, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, res := e.do(t, tt.method, tt.path, tt.body)
			if code != tt.want {
				t.Fatalf("status = %d, want %d (%+v)", code, tt.want, res)
			}
			if res.Success {
				t.Fatal("success flag set on error")
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, base+"/messages", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d, want 400", rec.Code)
	}
}

func TestFeedbackAndMedicalInfo(t *testing.T) {
	e := newEnv(t, conversation.Deps{Searcher: stubSearcher{answer: "Ginger may ease nausea."}})
	sess := e.createSession(t)

	code, res := e.do(t, http.MethodPost, "/api/sessions/"+sess.ID+"/feedback", map[string]any{"rating": 5, "comments": "great"})
	if code != http.StatusCreated || !res.Success {
		t.Fatalf("feedback = %d %+v", code, res)
	}
	if got := e.store.Feedback(sess.ID); len(got) != 1 || got[0].Rating != 5 {
		t.Fatalf("stored feedback = %+v", got)
	}

	code, res = e.do(t, http.MethodGet, "/api/medical-info?q=ginger", nil)
	if code != http.StatusOK {
		t.Fatalf("medical info = %d", code)
	}
	var info map[string]string
	if err := json.Unmarshal(res.Data, &info); err != nil || info["answer"] != "Ginger may ease nausea." {
		t.Fatalf("info = %v, %v", info, err)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newEnv(t, conversation.Deps{})
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/sessions", nil))
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight = %d %v", rec.Code, rec.Header())
	}
}

func TestEventsStreamGuideReady(t *testing.T) {
	e := newEnv(t, conversation.Deps{})
	sess := e.createSession(t)
	ts := httptest.NewServer(e.srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/sessions/"+sess.ID+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	guide := &pkg.HealthGuide{ID: "g-1", SessionID: sess.ID, SymptomSummary: "summary", Severity: pkg.SeverityLow}
	if err := e.store.InsertGuide(ctx, guide); err != nil {
		t.Fatal(err)
	}
	_ = e.hub.GuideReady(ctx, sess.ID)

	sc := bufio.NewScanner(resp.Body)
	var event string
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "event: ") {
			event = strings.TrimPrefix(line, "event: ")
		}
		if strings.HasPrefix(line, "data: ") {
			var got pkg.HealthGuide
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &got); err != nil {
				t.Fatal(err)
			}
			if event != "health_guide_ready" || got.ID != "g-1" {
				t.Fatalf("event %q guide %+v", event, got)
			}
			return
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("read stream: %v", err)
	}
	t.Fatal("stream ended without event")
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("s")
	_ = h.GuideReady(context.Background(), "s")
	select {
	case <-ch:
	default:
		t.Fatal("expected event")
	}
	cancel()
	if len(h.subs) != 0 {
		t.Fatalf("subs = %d, want 0", len(h.subs))
	}
	// Publishing with no subscribers is a no-op.
	_ = h.GuideReady(context.Background(), "s")
}
