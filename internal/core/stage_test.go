package core_test

import (
	"strings"
	"testing"

	"arogya-intake/internal/core"
	"arogya-intake/pkg"
)

var allStages = []pkg.Stage{
	pkg.StageLanguageSelection,
	pkg.StageGreeting,
	pkg.StageSymptomInquiry,
	pkg.StageDetailedAnalysis,
	pkg.StageHealthGuideGeneration,
	pkg.StageFeedback,
	pkg.StageEmergencyAlert,
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestNextStage(t *testing.T) {
	tests := []struct {
		name    string
		current pkg.Stage
		in      core.Transition
		want    pkg.Stage
	}{
		{"language not yet chosen", pkg.StageLanguageSelection, core.Transition{Text: "hello"}, pkg.StageLanguageSelection},
		{"language chosen", pkg.StageLanguageSelection, core.Transition{LanguageSelected: true}, pkg.StageGreeting},
		{"greeting any message", pkg.StageGreeting, core.Transition{Text: "hi"}, pkg.StageSymptomInquiry},
		{"greeting empty message", pkg.StageGreeting, core.Transition{}, pkg.StageSymptomInquiry},
		{"inquiry ten words stays", pkg.StageSymptomInquiry, core.Transition{Text: words(10)}, pkg.StageSymptomInquiry},
		{"inquiry eleven words advances", pkg.StageSymptomInquiry, core.Transition{Text: words(11)}, pkg.StageDetailedAnalysis},
		{"analysis eight messages stays", pkg.StageDetailedAnalysis, core.Transition{MessageCount: 8}, pkg.StageDetailedAnalysis},
		{"analysis nine messages advances", pkg.StageDetailedAnalysis, core.Transition{MessageCount: 9}, pkg.StageHealthGuideGeneration},
		{"guide generation stays", pkg.StageHealthGuideGeneration, core.Transition{MessageCount: 20}, pkg.StageHealthGuideGeneration},
		{"feedback stays", pkg.StageFeedback, core.Transition{Text: words(30), MessageCount: 30}, pkg.StageFeedback},
		{"emergency absorbing", pkg.StageEmergencyAlert, core.Transition{Text: "I feel better"}, pkg.StageEmergencyAlert},
		{"unknown stage stays", pkg.Stage("paused"), core.Transition{Text: words(20)}, pkg.Stage("paused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.NextStage(tt.current, tt.in); got != tt.want {
				t.Errorf("NextStage(%s) = %s, want %s", tt.current, got, tt.want)
			}
		})
	}
}

func TestNextStageEmergencyOverridesEverything(t *testing.T) {
	for _, s := range allStages {
		got := core.NextStage(s, core.Transition{Text: words(20), MessageCount: 50, LanguageSelected: true, Emergency: true})
		if got != pkg.StageEmergencyAlert {
			t.Errorf("NextStage(%s, emergency) = %s, want emergency_alert", s, got)
		}
	}
}

func TestNextStageIsTotal(t *testing.T) {
	texts := []string{"", "x", words(10), words(11), "मुझे बुखार है"}
	counts := []int{0, 1, 8, 9, 1000}
	valid := make(map[pkg.Stage]bool)
	for _, s := range allStages {
		valid[s] = true
	}
	for _, s := range allStages {
		for _, text := range texts {
			for _, n := range counts {
				got := core.NextStage(s, core.Transition{Text: text, MessageCount: n})
				if !valid[got] {
					t.Fatalf("NextStage(%s, %q, %d) = %q, not a stage", s, text, n, got)
				}
			}
		}
	}
}

func TestSymptomInquiryWordThreshold(t *testing.T) {
	for n := 0; n <= 10; n++ {
		if got := core.NextStage(pkg.StageSymptomInquiry, core.Transition{Text: words(n)}); got != pkg.StageSymptomInquiry {
			t.Errorf("%d words: got %s, want symptom_inquiry", n, got)
		}
	}
	for _, n := range []int{11, 12, 40} {
		if got := core.NextStage(pkg.StageSymptomInquiry, core.Transition{Text: words(n)}); got != pkg.StageDetailedAnalysis {
			t.Errorf("%d words: got %s, want detailed_analysis", n, got)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range allStages {
		want := s == pkg.StageFeedback || s == pkg.StageEmergencyAlert
		if got := core.IsTerminal(s); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, want)
		}
	}
}
