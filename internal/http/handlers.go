// Package http exposes the intake service over a JSON API.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"arogya-intake/internal/conversation"
	"arogya-intake/internal/core"
	"arogya-intake/internal/logging"
	"arogya-intake/internal/report"
	"arogya-intake/pkg"
)

// Server bundles the dependencies of the HTTP handlers.  It implements
// http.Handler.
type Server struct {
	Service *conversation.Service
	// Reports resolves report file names; nil disables downloads.
	Reports *report.Renderer
	Events  *Hub
	// KeepAlive is the interval of SSE comment pings.
	KeepAlive time.Duration

	router chi.Router
}

// NewServer constructs a Server and its routes.
func NewServer(svc *conversation.Service, reports *report.Renderer, events *Hub) *Server {
	s := &Server{Service: svc, Reports: reports, Events: events, KeepAlive: 15 * time.Second}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleRoot)
		r.Get("/languages", s.handleLanguages)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/language", s.handleSelectLanguage)
			r.Post("/messages", s.handlePostMessage)
			r.Get("/messages", s.handleListMessages)
			r.Get("/health-guide", s.handleGetGuide)
			r.Get("/events", s.handleEvents)
			r.Post("/generate-pdf", s.handleGeneratePDF)
			r.Post("/feedback", s.handleFeedback)
		})
		r.Get("/reports/{filename}", s.handleDownloadReport)
		r.Get("/medical-info", s.handleMedicalInfo)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// envelope is the shape of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: msg, Data: data})
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound),
		errors.Is(err, conversation.ErrGuideNotFound),
		errors.Is(err, report.ErrNotFound):
		fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, conversation.ErrInvalidFeedback),
		errors.Is(err, conversation.ErrEmptyMessage),
		errors.Is(err, conversation.ErrInvalidLanguage),
		errors.Is(err, report.ErrInvalidName):
		fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, conversation.ErrReportsDisabled),
		errors.Is(err, conversation.ErrSearchUnavailable):
		fail(w, http.StatusServiceUnavailable, err.Error())
	default:
		logging.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		fail(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	ok(w, http.StatusOK, "Arogya health intake API", map[string]any{
		"languages": pkg.AllLanguages,
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	ok(w, http.StatusOK, "", core.Languages())
}

type createSessionRequest struct {
	UserID   string       `json:"user_id"`
	Language pkg.Language `json:"language"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Language != "" {
		lang, valid := pkg.ParseLanguage(string(req.Language))
		if !valid {
			writeError(w, r, conversation.ErrInvalidLanguage)
			return
		}
		req.Language = lang
	}
	sess, err := s.Service.StartSession(r.Context(), conversation.StartSessionInput{UserID: req.UserID, Language: req.Language})
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "session created", sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Service.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", sess)
}

type selectLanguageRequest struct {
	Language pkg.Language `json:"language"`
}

func (s *Server) handleSelectLanguage(w http.ResponseWriter, r *http.Request) {
	var req selectLanguageRequest
	if !decode(w, r, &req) {
		return
	}
	sess, welcome, err := s.Service.SelectLanguage(r.Context(), chi.URLParam(r, "id"), req.Language)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "language selected", map[string]any{
		"session": sess,
		"message": welcome,
	})
}

type postMessageRequest struct {
	Content  string       `json:"content"`
	Language pkg.Language `json:"language"`
}

type turnResponse struct {
	Message        *pkg.Message     `json:"message"`
	UserMessage    *pkg.Message     `json:"user_message"`
	Session        *pkg.Session     `json:"session"`
	HealthGuide    *pkg.HealthGuide `json:"health_guide,omitempty"`
	EmergencyAlert bool             `json:"emergency_alert"`
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Language != "" {
		lang, valid := pkg.ParseLanguage(string(req.Language))
		if !valid {
			writeError(w, r, conversation.ErrInvalidLanguage)
			return
		}
		req.Language = lang
	}
	res, err := s.Service.SendMessage(r.Context(), conversation.SendMessageInput{
		SessionID: chi.URLParam(r, "id"),
		Text:      req.Content,
		Language:  req.Language,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", turnResponse{
		Message:        res.AssistantMessage,
		UserMessage:    res.UserMessage,
		Session:        res.Session,
		HealthGuide:    res.Guide,
		EmergencyAlert: res.Emergency,
	})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.Service.ListMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []pkg.Message{}
	}
	ok(w, http.StatusOK, "", msgs)
}

func (s *Server) handleGetGuide(w http.ResponseWriter, r *http.Request) {
	g, err := s.Service.GetGuide(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", g)
}

type generatePDFRequest struct {
	IncludeConversation bool `json:"include_conversation"`
}

func (s *Server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	var req generatePDFRequest
	if !decode(w, r, &req) {
		return
	}
	name, err := s.Service.GenerateReport(r.Context(), chi.URLParam(r, "id"), req.IncludeConversation)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "report generated", map[string]string{
		"filename":     name,
		"download_url": "/api/reports/" + name,
	})
}

func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	if s.Reports == nil {
		writeError(w, r, conversation.ErrReportsDisabled)
		return
	}
	name := chi.URLParam(r, "filename")
	p, err := s.Reports.Path(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, p)
}

type feedbackRequest struct {
	Rating                 int      `json:"rating"`
	Comments               string   `json:"comments"`
	HelpfulAspects         []string `json:"helpful_aspects"`
	ImprovementSuggestions string   `json:"improvement_suggestions"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decode(w, r, &req) {
		return
	}
	f, err := s.Service.SubmitFeedback(r.Context(), conversation.FeedbackInput{
		SessionID:              chi.URLParam(r, "id"),
		Rating:                 req.Rating,
		Comments:               req.Comments,
		HelpfulAspects:         req.HelpfulAspects,
		ImprovementSuggestions: req.ImprovementSuggestions,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "thank you for your feedback", f)
}

func (s *Server) handleMedicalInfo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		fail(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	answer, err := s.Service.LookupMedicalInfo(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, http.StatusOK, "", map[string]string{"query": q, "answer": answer})
}

// handleEvents streams a health_guide_ready event for the session using SSE.
// If the guide already exists it is sent at once; otherwise the handler waits
// for the hub until the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if _, err := s.Service.GetSession(ctx, id); err != nil {
		writeError(w, r, err)
		return
	}
	flusher, canFlush := w.(http.Flusher)
	if !canFlush || s.Events == nil {
		fail(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Subscribe before checking so a guide stored in between is not missed.
	ready, unsubscribe := s.Events.Subscribe(id)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(s.KeepAlive)
	defer ticker.Stop()
	check := func() bool {
		g, err := s.Service.GetGuide(ctx, id)
		if err != nil {
			return false
		}
		data, err := json.Marshal(g)
		if err != nil {
			return false
		}
		fmt.Fprintf(w, "event: health_guide_ready\ndata: %s\n\n", data)
		flusher.Flush()
		return true
	}
	if check() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ready:
			if check() {
				return
			}
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// requestLogger hands the router's request id to the logging package and
// logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context())))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.FromContext(r.Context()).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
