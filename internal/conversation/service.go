// Package conversation runs intake sessions on top of the core engine and a
// store.  Every turn is applied under a per-session lock so that the
// read-modify-write of session state is never interleaved.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"arogya-intake/internal/core"
	"arogya-intake/internal/db"
	"arogya-intake/internal/logging"
	"arogya-intake/pkg"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrGuideNotFound     = errors.New("health guide not found")
	ErrInvalidFeedback   = errors.New("rating must be between 1 and 5")
	ErrEmptyMessage      = errors.New("message must not be empty")
	ErrInvalidLanguage   = errors.New("unsupported language")
	ErrReportsDisabled   = errors.New("report generation is not configured")
	ErrSearchUnavailable = errors.New("medical information service unavailable")
)

// GuideNotifier is told when a session's guide has been stored.
type GuideNotifier interface {
	GuideReady(ctx context.Context, sessionID string) error
}

// ReportRenderer writes a guide document and returns its file name.
type ReportRenderer interface {
	Render(session *pkg.Session, guide *pkg.HealthGuide, history []pkg.Message) (string, error)
}

// Deps are the collaborators of a Service.  Store is required; the rest may
// be nil.
type Deps struct {
	Store    db.Store
	LLM      core.Completer
	Searcher core.Searcher
	Notifier GuideNotifier
	Reports  ReportRenderer
	LLMOpts  core.Options
}

// Service is the host of the intake engine.
type Service struct {
	store        db.Store
	orchestrator *core.Orchestrator
	synthesizer  *core.GuideSynthesizer
	searcher     core.Searcher
	notifier     GuideNotifier
	reports      ReportRenderer
	searchTO     time.Duration
	locks        *keyedMutex
	now          func() time.Time
}

// NewService wires a Service from its dependencies.
func NewService(d Deps) *Service {
	return &Service{
		store:        d.Store,
		orchestrator: core.NewOrchestrator(d.LLM, d.LLMOpts),
		synthesizer:  core.NewGuideSynthesizer(d.LLM, d.LLMOpts),
		searcher:     d.Searcher,
		notifier:     d.Notifier,
		reports:      d.Reports,
		searchTO:     d.LLMOpts.Timeout,
		locks:        newKeyedMutex(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) loadSession(ctx context.Context, id string) (*pkg.Session, error) {
	sess, err := s.store.GetSession(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

// StartSessionInput opens a session.  Language is optional.
type StartSessionInput struct {
	UserID   string
	Language pkg.Language
}

// StartSession creates a session waiting for language selection.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*pkg.Session, error) {
	now := s.now()
	sess := &pkg.Session{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Language:  in.Language,
		Stage:     pkg.StageLanguageSelection,
		Symptoms:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logging.FromContext(ctx).Info("session started", "session_id", sess.ID)
	return sess, nil
}

// GetSession returns the session with the given id.
func (s *Service) GetSession(ctx context.Context, id string) (*pkg.Session, error) {
	return s.loadSession(ctx, id)
}

// ListMessages returns the session's history, oldest first.
func (s *Service) ListMessages(ctx context.Context, id string) ([]pkg.Message, error) {
	if _, err := s.loadSession(ctx, id); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// SelectLanguage fixes the session language, advances past language
// selection and posts the welcome message.  On a session already past
// language selection only the language changes and the message is nil.
func (s *Service) SelectLanguage(ctx context.Context, id string, lang pkg.Language) (*pkg.Session, *pkg.Message, error) {
	lang, ok := pkg.ParseLanguage(string(lang))
	if !ok {
		return nil, nil, ErrInvalidLanguage
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	upd := pkg.SessionUpdate{Language: &lang, UpdatedAt: now}

	// Only the first selection advances and greets; later calls just switch
	// language.
	var welcome *pkg.Message
	if sess.Stage == pkg.StageLanguageSelection {
		next := core.NextStage(sess.Stage, core.Transition{LanguageSelected: true})
		upd.Stage = &next
		welcome = &pkg.Message{
			ID:        uuid.NewString(),
			SessionID: id,
			Role:      pkg.RoleAssistant,
			Content:   core.WelcomeMessage(lang),
			Language:  lang,
			Timestamp: now,
			Metadata:  map[string]any{"type": "welcome"},
		}
		if err := s.store.InsertMessage(ctx, welcome); err != nil {
			return nil, nil, fmt.Errorf("store welcome message: %w", err)
		}
	}
	if err := s.store.UpdateSession(ctx, id, upd); err != nil {
		return nil, nil, fmt.Errorf("update session: %w", err)
	}
	upd.Apply(sess)
	logging.FromContext(ctx).Info("language selected", "session_id", id, "language", lang, "stage", sess.Stage)
	return sess, welcome, nil
}

// SendMessageInput is one user turn.  Language, when set, tags the stored user
// message only; the turn itself runs in the session language.
type SendMessageInput struct {
	SessionID string
	Text      string
	Language  pkg.Language
}

// TurnResult is everything a turn produced.
type TurnResult struct {
	UserMessage      *pkg.Message
	AssistantMessage *pkg.Message
	Session          *pkg.Session
	// Guide is set on the turn that generated the health guide.
	Guide     *pkg.HealthGuide
	Emergency bool
}

// SendMessage runs one conversation turn and persists its effects.  Completion
// failures never surface here; only storage errors and missing sessions do.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*TurnResult, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	unlock := s.locks.Lock(in.SessionID)
	defer unlock()

	sess, err := s.loadSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	lang := sess.Language.OrDefault()
	// The override only tags the stored message; screening, prompts and
	// canned replies follow the session language.
	msgLang := lang
	if in.Language != "" {
		msgLang = in.Language
	}
	log := logging.FromContext(ctx).With("session_id", sess.ID)

	userMsg := &pkg.Message{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Role:      pkg.RoleUser,
		Content:   text,
		Language:  msgLang,
		Timestamp: s.now(),
		Metadata:  map[string]any{"stage": string(sess.Stage)},
	}
	if err := s.store.InsertMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}
	count, err := s.store.CountMessages(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	reply := s.orchestrator.Respond(ctx, core.RespondInput{Session: *sess, Text: text, MessageCount: count})

	upd := pkg.SessionUpdate{Stage: &reply.NextStage}
	if reply.Emergency {
		flag := true
		severity := pkg.SeverityEmergency
		upd.EmergencyDetected = &flag
		upd.Severity = &severity
	}
	if merged := core.MergeSymptoms(sess.Symptoms, core.ExtractSymptoms([]pkg.Message{*userMsg})); len(merged) != len(sess.Symptoms) {
		upd.Symptoms = merged
	}

	meta := map[string]any{"stage": string(reply.NextStage)}
	if reply.Emergency {
		meta["emergency"] = true
		meta["category"] = reply.Keyword.Category
	}
	if reply.Fallback {
		meta["fallback"] = true
	}
	assistantMsg := &pkg.Message{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Role:      pkg.RoleAssistant,
		Content:   reply.Text,
		Language:  lang,
		Timestamp: s.now(),
		Metadata:  meta,
	}
	if err := s.store.InsertMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}
	upd.UpdatedAt = s.now()
	if err := s.store.UpdateSession(ctx, sess.ID, upd); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	upd.Apply(sess)

	result := &TurnResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Session:          sess,
		Emergency:        reply.Emergency,
	}
	if sess.Stage == pkg.StageHealthGuideGeneration && !sess.GuideGenerated {
		guide, err := s.generateGuide(ctx, sess)
		if err != nil {
			return nil, err
		}
		result.Guide = guide
	}
	log.Info("turn complete", "stage", sess.Stage, "emergency", reply.Emergency, "fallback", reply.Fallback)
	return result, nil
}

// generateGuide synthesizes and stores the guide and moves the session on to
// feedback.  The caller holds the session lock.
func (s *Service) generateGuide(ctx context.Context, sess *pkg.Session) (*pkg.HealthGuide, error) {
	msgs, err := s.store.ListMessages(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	guide := s.synthesizer.Synthesize(ctx, *sess, msgs)
	if err := s.store.InsertGuide(ctx, guide); err != nil {
		return nil, fmt.Errorf("store guide: %w", err)
	}

	generated := true
	stage := pkg.StageFeedback
	symptoms := core.MergeSymptoms(sess.Symptoms, core.ExtractSymptoms(msgs))
	upd := pkg.SessionUpdate{
		Stage:          &stage,
		GuideGenerated: &generated,
		Severity:       &guide.Severity,
		Symptoms:       symptoms,
		UpdatedAt:      s.now(),
	}
	if err := s.store.UpdateSession(ctx, sess.ID, upd); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	upd.Apply(sess)

	if s.notifier != nil {
		if err := s.notifier.GuideReady(ctx, sess.ID); err != nil {
			logging.FromContext(ctx).Error("guide notification failed", "session_id", sess.ID, "error", err)
		}
	}
	return guide, nil
}

// GetGuide returns the latest guide of the session.
func (s *Service) GetGuide(ctx context.Context, id string) (*pkg.HealthGuide, error) {
	if _, err := s.loadSession(ctx, id); err != nil {
		return nil, err
	}
	g, err := s.store.GetGuide(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, ErrGuideNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get guide: %w", err)
	}
	return g, nil
}

// FeedbackInput is the user's rating of a session.
type FeedbackInput struct {
	SessionID              string
	Rating                 int
	Comments               string
	HelpfulAspects         []string
	ImprovementSuggestions string
}

// SubmitFeedback validates and stores feedback.
func (s *Service) SubmitFeedback(ctx context.Context, in FeedbackInput) (*pkg.Feedback, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidFeedback
	}
	if _, err := s.loadSession(ctx, in.SessionID); err != nil {
		return nil, err
	}
	f := &pkg.Feedback{
		ID:                     uuid.NewString(),
		SessionID:              in.SessionID,
		Rating:                 in.Rating,
		Comments:               in.Comments,
		HelpfulAspects:         in.HelpfulAspects,
		ImprovementSuggestions: in.ImprovementSuggestions,
		CreatedAt:              s.now(),
	}
	if err := s.store.InsertFeedback(ctx, f); err != nil {
		return nil, fmt.Errorf("store feedback: %w", err)
	}
	return f, nil
}

// LookupMedicalInfo asks the search service a free-form question.
func (s *Service) LookupMedicalInfo(ctx context.Context, query string) (string, error) {
	answer, ok := core.MedicalLookup(ctx, s.searcher, query, s.searchTO)
	if !ok {
		return "", ErrSearchUnavailable
	}
	return answer, nil
}

// GenerateReport renders the session's latest guide and returns the file name.
func (s *Service) GenerateReport(ctx context.Context, id string, includeHistory bool) (string, error) {
	if s.reports == nil {
		return "", ErrReportsDisabled
	}
	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return "", err
	}
	guide, err := s.GetGuide(ctx, id)
	if err != nil {
		return "", err
	}
	var history []pkg.Message
	if includeHistory {
		if history, err = s.store.ListMessages(ctx, id); err != nil {
			return "", fmt.Errorf("list messages: %w", err)
		}
	}
	name, err := s.reports.Render(sess, guide, history)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	logging.FromContext(ctx).Info("report generated", "session_id", id, "file", name)
	return name, nil
}

// Notifiers fans a guide event out to several notifiers.
type Notifiers []GuideNotifier

func (ns Notifiers) GuideReady(ctx context.Context, sessionID string) error {
	var errs []error
	for _, n := range ns {
		if err := n.GuideReady(ctx, sessionID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
