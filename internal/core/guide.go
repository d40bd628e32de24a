package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"arogya-intake/internal/logging"
	"arogya-intake/pkg"
)

// guideContent is the fixed narrative of a guide.
type guideContent struct {
	Summary         string
	Conditions      []string
	OTC             []string
	Warnings        []string
	Diet            []string
	Lifestyle       []string
	WhenToSeeDoctor []string
}

// scaffoldGuides is used when the completion service answered.  The answer is
// kept out of the structured sections until it can be parsed reliably.
var scaffoldGuides = map[pkg.Language]guideContent{
	pkg.LanguageEnglish: {
		Summary:         "Based on our conversation",
		Conditions:      []string{"Please consult a doctor for proper diagnosis"},
		OTC:             []string{"Take rest", "Stay hydrated"},
		Warnings:        []string{"Severe symptoms", "Persistent problems"},
		Diet:            []string{"Healthy balanced diet", "Adequate water intake"},
		Lifestyle:       []string{"Regular exercise", "Adequate sleep"},
		WhenToSeeDoctor: []string{"If symptoms persist", "If symptoms worsen"},
	},
	pkg.LanguageHindi: {
		Summary:         "हमारी बातचीत के आधार पर",
		Conditions:      []string{"सही निदान के लिए कृपया डॉक्टर से परामर्श करें"},
		OTC:             []string{"आराम करें", "पर्याप्त पानी पिएं"},
		Warnings:        []string{"गंभीर लक्षण", "लगातार बनी रहने वाली समस्या"},
		Diet:            []string{"स्वस्थ संतुलित आहार", "पर्याप्त पानी"},
		Lifestyle:       []string{"नियमित व्यायाम", "पर्याप्त नींद"},
		WhenToSeeDoctor: []string{"यदि लक्षण बने रहें", "यदि लक्षण बढ़ें"},
	},
}

// fallbackGuides is used when the completion service could not be reached.
var fallbackGuides = map[pkg.Language]guideContent{
	pkg.LanguageEnglish: {
		Summary:         "Thank you for sharing your health concerns.",
		Conditions:      []string{"Please consult a healthcare professional for proper evaluation"},
		OTC:             []string{"Rest well", "Stay hydrated", "Monitor symptoms"},
		Warnings:        []string{"Severe or worsening symptoms", "Persistent discomfort"},
		Diet:            []string{"Eat nutritious meals", "Avoid processed foods", "Include fruits and vegetables"},
		Lifestyle:       []string{"Get adequate sleep", "Exercise regularly", "Manage stress"},
		WhenToSeeDoctor: []string{"For proper diagnosis", "If symptoms persist or worsen"},
	},
	pkg.LanguageHindi: {
		Summary:         "अपनी स्वास्थ्य समस्या साझा करने के लिए धन्यवाद।",
		Conditions:      []string{"सही जांच के लिए कृपया किसी स्वास्थ्य विशेषज्ञ से मिलें"},
		OTC:             []string{"अच्छी तरह आराम करें", "पर्याप्त पानी पिएं", "लक्षणों पर नज़र रखें"},
		Warnings:        []string{"गंभीर या बढ़ते लक्षण", "लगातार असुविधा"},
		Diet:            []string{"पौष्टिक भोजन करें", "प्रोसेस्ड खाने से बचें", "फल और सब्ज़ियां शामिल करें"},
		Lifestyle:       []string{"पर्याप्त नींद लें", "नियमित व्यायाम करें", "तनाव कम करें"},
		WhenToSeeDoctor: []string{"सही निदान के लिए", "यदि लक्षण बने रहें या बढ़ें"},
	},
}

func guideFor(table map[pkg.Language]guideContent, lang pkg.Language) guideContent {
	if c, ok := table[lang.OrDefault()]; ok {
		return c
	}
	return table[pkg.DefaultLanguage]
}

// GuideSynthesizer assembles the health guide at the end of an intake.
type GuideSynthesizer struct {
	LLM  Completer
	opts Options
	now  func() time.Time
}

// NewGuideSynthesizer constructs a synthesizer with the given completion client.
func NewGuideSynthesizer(client Completer, opts Options) *GuideSynthesizer {
	return &GuideSynthesizer{LLM: client, opts: opts.withDefaults(), now: time.Now}
}

// Synthesize builds the guide for session from its message history.  It
// always returns a complete guide: when the completion service fails, a
// deterministic fallback guide with medium severity is returned instead.
func (g *GuideSynthesizer) Synthesize(ctx context.Context, session pkg.Session, messages []pkg.Message) *pkg.HealthGuide {
	lang := session.Language.OrDefault()
	log := logging.FromContext(ctx).With("session_id", session.ID, "language", lang)

	symptoms := MergeSymptoms(session.Symptoms, ExtractSymptoms(messages))

	_, err := complete(ctx, g.LLM, g.opts, SystemPrompt(lang), GuidePrompt(symptoms, lang))
	if err != nil {
		log.Error("guide completion failed, using fallback guide", "error", err)
		guide := g.build(session, guideFor(fallbackGuides, lang), pkg.SeverityMedium)
		guide.Remedies = []pkg.TraditionalRemedy{WellnessRemedy(lang)}
		return guide
	}

	guide := g.build(session, guideFor(scaffoldGuides, lang), pkg.SeverityLow)
	for _, tag := range symptoms {
		guide.Remedies = append(guide.Remedies, Remedies(tag)...)
	}
	if len(guide.Remedies) == 0 {
		guide.Remedies = []pkg.TraditionalRemedy{WellnessRemedy(lang)}
	}
	log.Info("health guide synthesized", "symptoms", len(symptoms), "remedies", len(guide.Remedies))
	return guide
}

func (g *GuideSynthesizer) build(session pkg.Session, c guideContent, severity pkg.Severity) *pkg.HealthGuide {
	if session.EmergencyDetected {
		severity = pkg.MaxSeverity(severity, pkg.SeverityEmergency)
	}
	return &pkg.HealthGuide{
		ID:                 uuid.NewString(),
		SessionID:          session.ID,
		Language:           session.Language.OrDefault(),
		SymptomSummary:     c.Summary,
		PossibleConditions: append([]string(nil), c.Conditions...),
		OTCRecommendations: append([]string(nil), c.OTC...),
		WarningSigns:       append([]string(nil), c.Warnings...),
		DietaryAdvice:      append([]string(nil), c.Diet...),
		LifestyleTips:      append([]string(nil), c.Lifestyle...),
		WhenToSeeDoctor:    append([]string(nil), c.WhenToSeeDoctor...),
		Severity:           severity,
		CreatedAt:          g.now(),
	}
}
