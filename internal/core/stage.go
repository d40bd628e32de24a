package core

import (
	"strings"

	"arogya-intake/pkg"
)

const (
	// detailWordThreshold is the word count above which a symptom description
	// is considered detailed enough to move on.
	detailWordThreshold = 10
	// guideMessageThreshold is the stored message count (user and assistant
	// together) above which the guide is generated.
	guideMessageThreshold = 8
)

// Transition carries what the stage machine needs to know about a turn.
type Transition struct {
	// Text is the latest user message.
	Text string
	// MessageCount is the number of messages stored for the session so far.
	MessageCount int
	// LanguageSelected is set when the caller has just fixed the language.
	LanguageSelected bool
	// Emergency is set when the emergency detector fired on Text.
	Emergency bool
}

// NextStage computes the stage that follows current.  It is total: any input
// yields a stage, and a stage with no matching rule stays where it is.
func NextStage(current pkg.Stage, t Transition) pkg.Stage {
	if t.Emergency || current == pkg.StageEmergencyAlert {
		return pkg.StageEmergencyAlert
	}
	switch current {
	case pkg.StageLanguageSelection:
		if t.LanguageSelected {
			return pkg.StageGreeting
		}
	case pkg.StageGreeting:
		return pkg.StageSymptomInquiry
	case pkg.StageSymptomInquiry:
		if len(strings.Fields(t.Text)) > detailWordThreshold {
			return pkg.StageDetailedAnalysis
		}
	case pkg.StageDetailedAnalysis:
		if t.MessageCount > guideMessageThreshold {
			return pkg.StageHealthGuideGeneration
		}
	}
	return current
}

// IsTerminal reports whether the core performs no further advancement from s.
func IsTerminal(s pkg.Stage) bool {
	return s == pkg.StageFeedback || s == pkg.StageEmergencyAlert
}
