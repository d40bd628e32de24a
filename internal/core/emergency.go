package core

import (
	"strings"

	"arogya-intake/pkg"
)

// emergencyKeywords is the red-flag vocabulary per language.  Languages without
// an entry get no keyword screening at all.
var emergencyKeywords = map[pkg.Language][]pkg.EmergencyKeyword{
	pkg.LanguageEnglish: {
		{Keyword: "chest pain", Language: pkg.LanguageEnglish, Severity: pkg.SeverityEmergency, Category: "cardiac"},
		{Keyword: "can't breathe", Language: pkg.LanguageEnglish, Severity: pkg.SeverityEmergency, Category: "respiratory"},
		{Keyword: "crushing pain", Language: pkg.LanguageEnglish, Severity: pkg.SeverityEmergency, Category: "cardiac"},
		{Keyword: "severe bleeding", Language: pkg.LanguageEnglish, Severity: pkg.SeverityEmergency, Category: "trauma"},
		{Keyword: "suicidal thoughts", Language: pkg.LanguageEnglish, Severity: pkg.SeverityEmergency, Category: "mental"},
		{Keyword: "slurred speech", Language: pkg.LanguageEnglish, Severity: pkg.SeverityEmergency, Category: "neurological"},
		{Keyword: "sudden weakness", Language: pkg.LanguageEnglish, Severity: pkg.SeverityEmergency, Category: "neurological"},
	},
	pkg.LanguageHindi: {
		{Keyword: "सीने में दर्द", Language: pkg.LanguageHindi, Severity: pkg.SeverityEmergency, Category: "cardiac"},
		{Keyword: "सांस नहीं आ रही", Language: pkg.LanguageHindi, Severity: pkg.SeverityEmergency, Category: "respiratory"},
		{Keyword: "तेज खून बह रहा है", Language: pkg.LanguageHindi, Severity: pkg.SeverityEmergency, Category: "trauma"},
	},
}

// loweredKeywords mirrors emergencyKeywords with the phrases pre-lowered so
// detection does not re-fold the vocabulary on every call.
var loweredKeywords = func() map[pkg.Language][]string {
	out := make(map[pkg.Language][]string, len(emergencyKeywords))
	for lang, kws := range emergencyKeywords {
		lowered := make([]string, len(kws))
		for i, kw := range kws {
			lowered[i] = strings.ToLower(kw.Keyword)
		}
		out[lang] = lowered
	}
	return out
}()

// Keywords returns a copy of the emergency vocabulary registered for lang.
func Keywords(lang pkg.Language) []pkg.EmergencyKeyword {
	kws := emergencyKeywords[lang.OrDefault()]
	return append([]pkg.EmergencyKeyword(nil), kws...)
}

// Detect reports whether text contains any emergency keyword of lang.  The
// match is a case-insensitive substring test.  An unset language is treated
// as the default language; a language without keywords never matches.
func Detect(text string, lang pkg.Language) bool {
	_, ok := Match(text, lang)
	return ok
}

// Match returns the first emergency keyword of lang found in text.
func Match(text string, lang pkg.Language) (pkg.EmergencyKeyword, bool) {
	lang = lang.OrDefault()
	if text == "" {
		return pkg.EmergencyKeyword{}, false
	}
	lower := strings.ToLower(text)
	for i, kw := range loweredKeywords[lang] {
		if strings.Contains(lower, kw) {
			return emergencyKeywords[lang][i], true
		}
	}
	return pkg.EmergencyKeyword{}, false
}
