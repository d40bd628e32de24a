package core_test

import (
	"context"
	"testing"

	"arogya-intake/internal/core"
	"arogya-intake/pkg"
)

func checkComplete(t *testing.T, g *pkg.HealthGuide) {
	t.Helper()
	if g == nil {
		t.Fatal("nil guide")
	}
	if g.ID == "" {
		t.Error("guide has no id")
	}
	if g.SymptomSummary == "" {
		t.Error("empty symptom summary")
	}
	lists := map[string][]string{
		"possible_conditions": g.PossibleConditions,
		"otc_recommendations": g.OTCRecommendations,
		"warning_signs":       g.WarningSigns,
		"dietary_advice":      g.DietaryAdvice,
		"lifestyle_tips":      g.LifestyleTips,
		"when_to_see_doctor":  g.WhenToSeeDoctor,
	}
	for name, l := range lists {
		if len(l) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
	if len(g.Remedies) == 0 {
		t.Error("no remedies")
	}
}

func TestSynthesizeCoughRemedy(t *testing.T) {
	llm := &fakeCompleter{reply: "guide text"}
	g := core.NewGuideSynthesizer(llm, core.Options{})
	s := pkg.Session{ID: "s-1", Language: pkg.LanguageEnglish, Stage: pkg.StageHealthGuideGeneration}
	msgs := []pkg.Message{
		userMsg("I have a cough"),
		assistantMsg("Since when?"),
		userMsg("3 days, worse at night"),
	}

	guide := g.Synthesize(context.Background(), s, msgs)
	checkComplete(t, guide)
	if guide.Severity != pkg.SeverityLow {
		t.Errorf("Severity = %s, want low", guide.Severity)
	}
	if guide.SessionID != "s-1" || guide.Language != pkg.LanguageEnglish {
		t.Errorf("guide identity = %s/%s", guide.SessionID, guide.Language)
	}
	found := false
	for _, r := range guide.Remedies {
		if r.Name == "Haldi Doodh (Golden Milk)" {
			found = true
		}
	}
	if !found {
		t.Errorf("remedies %+v missing golden milk", guide.Remedies)
	}
	if len(llm.calls) != 1 || llm.calls[0].User != core.GuidePrompt([]string{"cough"}, pkg.LanguageEnglish) {
		t.Errorf("unexpected guide request %+v", llm.calls)
	}
}

func TestSynthesizeUsesSessionSymptoms(t *testing.T) {
	g := core.NewGuideSynthesizer(&fakeCompleter{reply: "ok"}, core.Options{})
	s := pkg.Session{ID: "s-2", Language: pkg.LanguageEnglish, Symptoms: []string{"indigestion"}}

	guide := g.Synthesize(context.Background(), s, []pkg.Message{userMsg("and a fever too")})
	names := map[string]bool{}
	for _, r := range guide.Remedies {
		names[r.Name] = true
	}
	if !names["Ajwain Water"] || !names["Tulsi Kadha"] {
		t.Errorf("remedies = %v, want ajwain water and tulsi kadha", names)
	}
}

func TestSynthesizeNoKnownRemedy(t *testing.T) {
	g := core.NewGuideSynthesizer(&fakeCompleter{reply: "ok"}, core.Options{})
	s := pkg.Session{ID: "s-3", Language: pkg.LanguageEnglish}

	guide := g.Synthesize(context.Background(), s, []pkg.Message{userMsg("some dizziness")})
	checkComplete(t, guide)
	if len(guide.Remedies) != 1 || guide.Remedies[0].Name != core.WellnessRemedy(pkg.LanguageEnglish).Name {
		t.Errorf("remedies = %+v, want the wellness remedy", guide.Remedies)
	}
}

func TestSynthesizeFallback(t *testing.T) {
	for _, lang := range []pkg.Language{pkg.LanguageEnglish, pkg.LanguageHindi, pkg.LanguageBengali} {
		t.Run(string(lang), func(t *testing.T) {
			g := core.NewGuideSynthesizer(&fakeCompleter{err: errUnavailable}, core.Options{})
			s := pkg.Session{ID: "s-4", Language: lang, Symptoms: []string{"cough"}}

			guide := g.Synthesize(context.Background(), s, []pkg.Message{userMsg("cough")})
			checkComplete(t, guide)
			if guide.Severity != pkg.SeverityMedium {
				t.Errorf("Severity = %s, want medium", guide.Severity)
			}
			if len(guide.Remedies) != 1 {
				t.Fatalf("got %d remedies, want 1", len(guide.Remedies))
			}
			if guide.Remedies[0].Language != lang {
				t.Errorf("remedy language = %s, want %s", guide.Remedies[0].Language, lang)
			}
		})
	}
}

func TestSynthesizeEmergencySession(t *testing.T) {
	for _, llm := range []*fakeCompleter{{reply: "ok"}, {err: errUnavailable}} {
		g := core.NewGuideSynthesizer(llm, core.Options{})
		s := pkg.Session{ID: "s-5", Language: pkg.LanguageEnglish, EmergencyDetected: true}
		guide := g.Synthesize(context.Background(), s, nil)
		if guide.Severity != pkg.SeverityEmergency {
			t.Errorf("Severity = %s, want emergency", guide.Severity)
		}
	}
}
