package pkg

import (
	"strings"
	"time"
)

// Language is the conversation language chosen by the user.  The empty value
// means no language has been selected yet.
type Language string

const (
	LanguageEnglish  Language = "english"
	LanguageHindi    Language = "hindi"
	LanguageKannada  Language = "kannada"
	LanguageMarathi  Language = "marathi"
	LanguageTelugu   Language = "telugu"
	LanguageTamil    Language = "tamil"
	LanguageBengali  Language = "bengali"
	LanguageGujarati Language = "gujarati"
)

// DefaultLanguage is used wherever a language is required but unset.
const DefaultLanguage = LanguageEnglish

// AllLanguages lists the supported languages in presentation order.
var AllLanguages = []Language{
	LanguageEnglish,
	LanguageHindi,
	LanguageKannada,
	LanguageMarathi,
	LanguageTelugu,
	LanguageTamil,
	LanguageBengali,
	LanguageGujarati,
}

// ParseLanguage maps user input onto a supported language.  Matching is case
// insensitive and ignores surrounding whitespace.
func ParseLanguage(s string) (Language, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range AllLanguages {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// OrDefault returns l, or DefaultLanguage when l is unset.
func (l Language) OrDefault() Language {
	if l == "" {
		return DefaultLanguage
	}
	return l
}

// Stage is a state of the intake conversation.
type Stage string

const (
	StageLanguageSelection     Stage = "language_selection"
	StageGreeting              Stage = "greeting"
	StageSymptomInquiry        Stage = "symptom_inquiry"
	StageDetailedAnalysis      Stage = "detailed_analysis"
	StageHealthGuideGeneration Stage = "health_guide_generation"
	StageFeedback              Stage = "feedback"
	StageEmergencyAlert        Stage = "emergency_alert"
)

// Severity classifies how serious the reported condition appears.
type Severity string

const (
	SeverityLow       Severity = "low"
	SeverityMedium    Severity = "medium"
	SeverityHigh      Severity = "high"
	SeverityEmergency Severity = "emergency"
)

// Rank orders severities; unset sorts below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityEmergency:
		return 4
	default:
		return 0
	}
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Role describes who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Session is one intake conversation.
type Session struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id,omitempty"`
	Language          Language  `json:"language,omitempty"`
	Stage             Stage     `json:"current_stage"`
	Symptoms          []string  `json:"symptoms"`
	Severity          Severity  `json:"severity_level,omitempty"`
	EmergencyDetected bool      `json:"emergency_detected"`
	GuideGenerated    bool      `json:"health_guide_generated"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SessionUpdate is a partial update of a session.  Nil fields are left
// untouched by the store.
type SessionUpdate struct {
	Language          *Language
	Stage             *Stage
	Symptoms          []string
	Severity          *Severity
	EmergencyDetected *bool
	GuideGenerated    *bool
	UpdatedAt         time.Time
}

// Apply copies the set fields of u onto s.
func (u SessionUpdate) Apply(s *Session) {
	if u.Language != nil {
		s.Language = *u.Language
	}
	if u.Stage != nil {
		s.Stage = *u.Stage
	}
	if u.Symptoms != nil {
		s.Symptoms = append([]string(nil), u.Symptoms...)
	}
	if u.Severity != nil {
		s.Severity = *u.Severity
	}
	if u.EmergencyDetected != nil {
		s.EmergencyDetected = *u.EmergencyDetected
	}
	if u.GuideGenerated != nil {
		s.GuideGenerated = *u.GuideGenerated
	}
	if !u.UpdatedAt.IsZero() {
		s.UpdatedAt = u.UpdatedAt
	}
}

// Message is a chat message in a session.  Messages are immutable once stored.
type Message struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Role      Role           `json:"sender"`
	Content   string         `json:"content"`
	Language  Language       `json:"language,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// EmergencyKeyword is a phrase that marks a message as a possible emergency.
type EmergencyKeyword struct {
	Keyword  string   `json:"keyword"`
	Language Language `json:"language"`
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
}

// TraditionalRemedy is a home remedy suggested alongside a health guide.
type TraditionalRemedy struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Preparation string   `json:"preparation"`
	Usage       string   `json:"usage"`
	Benefits    string   `json:"benefits"`
	Language    Language `json:"language"`
}

// HealthGuide is the structured document produced at the end of an intake.
type HealthGuide struct {
	ID                 string              `json:"id"`
	SessionID          string              `json:"session_id"`
	Language           Language            `json:"language"`
	SymptomSummary     string              `json:"symptom_summary"`
	PossibleConditions []string            `json:"possible_conditions"`
	OTCRecommendations []string            `json:"otc_recommendations"`
	WarningSigns       []string            `json:"warning_signs"`
	Remedies           []TraditionalRemedy `json:"traditional_remedies"`
	DietaryAdvice      []string            `json:"dietary_advice"`
	LifestyleTips      []string            `json:"lifestyle_tips"`
	WhenToSeeDoctor    []string            `json:"when_to_see_doctor"`
	Severity           Severity            `json:"severity_level"`
	CreatedAt          time.Time           `json:"created_at"`
}

// Feedback is the user's rating of a finished session.
type Feedback struct {
	ID                     string    `json:"id"`
	SessionID              string    `json:"session_id"`
	Rating                 int       `json:"rating"`
	Comments               string    `json:"comments,omitempty"`
	HelpfulAspects         []string  `json:"helpful_aspects,omitempty"`
	ImprovementSuggestions string    `json:"improvement_suggestions,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}
