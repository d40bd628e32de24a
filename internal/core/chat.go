package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"arogya-intake/internal/logging"
	"arogya-intake/pkg"
)

// CompletionRequest is a single prompt sent to the completion service.
type CompletionRequest struct {
	System    string
	User      string
	Model     string
	MaxTokens int
}

// Completer is the completion service.  Implementations may fail or block;
// callers bound each call with a timeout.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// errEmptyCompletion marks a successful call that produced no text.
var errEmptyCompletion = errors.New("completion returned no text")

// Options tunes the calls made to the completion service.
type Options struct {
	// Model is passed through to the completer as a hint; empty lets the
	// client use its configured default.
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

const (
	defaultMaxTokens = 1000
	defaultTimeout   = 30 * time.Second
)

func (o Options) withDefaults() Options {
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return o
}

// complete runs one bounded completion call.  A timeout, an error and an
// empty answer are all reported as errors.
func complete(ctx context.Context, llm Completer, opts Options, system, user string) (string, error) {
	if llm == nil {
		return "", errors.New("no completion service configured")
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	text, err := llm.Complete(ctx, CompletionRequest{
		System:    system,
		User:      user,
		Model:     opts.Model,
		MaxTokens: opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

// Orchestrator produces the assistant's side of each conversation turn.
type Orchestrator struct {
	LLM  Completer
	opts Options
}

// NewOrchestrator constructs an Orchestrator with the given completion client.
func NewOrchestrator(client Completer, opts Options) *Orchestrator {
	return &Orchestrator{LLM: client, opts: opts.withDefaults()}
}

// RespondInput is one user turn.
type RespondInput struct {
	Session pkg.Session
	Text    string
	// MessageCount is the number of messages stored for the session,
	// including the user message of this turn.
	MessageCount int
}

// Reply is the assistant turn together with the stage the session should move
// to.  Persisting NextStage is the caller's job.
type Reply struct {
	Text      string
	Emergency bool
	NextStage pkg.Stage
	// Keyword is the emergency keyword that fired, when Emergency is set.
	Keyword *pkg.EmergencyKeyword
	// Fallback is set when the completion service could not be used.
	Fallback bool
}

// Respond answers a user message.  Emergency keywords short-circuit to the
// fixed emergency message without calling the completion service.  A failing
// or slow completion service yields the fallback message; Respond never
// returns an error.
func (o *Orchestrator) Respond(ctx context.Context, in RespondInput) Reply {
	lang := in.Session.Language.OrDefault()
	log := logging.FromContext(ctx).With(
		"session_id", in.Session.ID,
		"stage", in.Session.Stage,
		"language", lang,
	)

	if kw, ok := Match(in.Text, lang); ok {
		log.Warn("emergency keyword detected", "category", kw.Category)
		return Reply{
			Text:      EmergencyMessage(lang),
			Emergency: true,
			NextStage: NextStage(in.Session.Stage, Transition{Text: in.Text, MessageCount: in.MessageCount, Emergency: true}),
			Keyword:   &kw,
		}
	}

	next := NextStage(in.Session.Stage, Transition{Text: in.Text, MessageCount: in.MessageCount})
	prompt := ComposeTurnPrompt(in.Session.Stage, lang, in.Text)
	text, err := complete(ctx, o.LLM, o.opts, SystemPrompt(lang), prompt)
	if err != nil {
		log.Error("completion failed, using fallback reply", "error", err)
		return Reply{Text: FallbackMessage(lang), NextStage: next, Fallback: true}
	}
	return Reply{Text: text, NextStage: next}
}
