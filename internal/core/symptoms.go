package core

import (
	"strings"

	"arogya-intake/pkg"
)

// symptomVocabulary is the fixed list of symptom tags recognised in user
// messages.  Matching is by substring, so "ache" also fires on "headache".
var symptomVocabulary = []string{
	"pain", "ache", "fever", "cough", "headache", "nausea",
	"vomiting", "diarrhea", "constipation", "fatigue", "weakness",
	"dizziness", "rash", "swelling", "bleeding", "indigestion",
}

// ExtractSymptoms scans the user-authored messages for known symptom tags.
// Tags are returned once each, in the order they were first found.
func ExtractSymptoms(messages []pkg.Message) []string {
	var found []string
	seen := make(map[string]bool)
	for _, m := range messages {
		if m.Role != pkg.RoleUser {
			continue
		}
		content := strings.ToLower(m.Content)
		for _, tag := range symptomVocabulary {
			if !seen[tag] && strings.Contains(content, tag) {
				seen[tag] = true
				found = append(found, tag)
			}
		}
	}
	return found
}

// MergeSymptoms appends the tags in found that are not already in existing.
// Existing tags keep their position and are never dropped.
func MergeSymptoms(existing, found []string) []string {
	out := append([]string(nil), existing...)
	seen := make(map[string]bool, len(existing))
	for _, tag := range existing {
		seen[tag] = true
	}
	for _, tag := range found {
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
