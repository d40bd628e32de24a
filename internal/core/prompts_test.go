package core_test

import (
	"strings"
	"testing"

	"arogya-intake/internal/core"
	"arogya-intake/pkg"
)

func TestComposeTurnPrompt(t *testing.T) {
	got := core.ComposeTurnPrompt(pkg.StageGreeting, pkg.LanguageEnglish, "I have a headache")
	want := core.ComposeGuidance(pkg.StageGreeting, pkg.LanguageEnglish) + "\n\nUser: I have a headache"
	if got != want {
		t.Fatalf("ComposeTurnPrompt = %q, want %q", got, want)
	}
}

func TestComposeGuidanceFallsBack(t *testing.T) {
	en := core.ComposeGuidance(pkg.StageSymptomInquiry, pkg.LanguageEnglish)
	if got := core.ComposeGuidance(pkg.StageSymptomInquiry, pkg.LanguageTamil); got != en {
		t.Errorf("tamil guidance = %q, want english row", got)
	}
	if core.ComposeGuidance(pkg.StageSymptomInquiry, pkg.LanguageHindi) == en {
		t.Error("hindi guidance should have its own row")
	}
	// Stages without a row use the generic instruction.
	generic := core.ComposeGuidance(pkg.StageHealthGuideGeneration, pkg.LanguageEnglish)
	if generic == "" || generic == en {
		t.Errorf("unexpected generic guidance %q", generic)
	}
	if core.ComposeGuidance(pkg.StageEmergencyAlert, pkg.LanguageEnglish) != generic {
		t.Error("emergency stage should use the generic instruction")
	}
}

func TestFixedMessagesNonEmpty(t *testing.T) {
	for _, lang := range append([]pkg.Language{""}, pkg.AllLanguages...) {
		for name, s := range map[string]string{
			"system":    core.SystemPrompt(lang),
			"welcome":   core.WelcomeMessage(lang),
			"emergency": core.EmergencyMessage(lang),
			"fallback":  core.FallbackMessage(lang),
		} {
			if strings.TrimSpace(s) == "" {
				t.Errorf("%s message empty for %q", name, lang)
			}
		}
	}
}

func TestGuidePrompt(t *testing.T) {
	p := core.GuidePrompt([]string{"cough", "fever"}, pkg.LanguageEnglish)
	if !strings.Contains(p, "User symptoms: cough, fever") {
		t.Errorf("prompt missing symptom list: %q", p)
	}
	p = core.GuidePrompt(nil, pkg.LanguageEnglish)
	if !strings.Contains(p, "general health concern") {
		t.Errorf("prompt missing placeholder: %q", p)
	}
}

func TestLanguages(t *testing.T) {
	langs := core.Languages()
	if len(langs) != len(pkg.AllLanguages) {
		t.Fatalf("got %d languages, want %d", len(langs), len(pkg.AllLanguages))
	}
	for i, l := range langs {
		if l.Code != pkg.AllLanguages[i] || l.Name == "" || l.NativeName == "" {
			t.Errorf("language %d = %+v", i, l)
		}
	}
}
