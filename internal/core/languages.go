package core

import "arogya-intake/pkg"

// LanguageInfo describes a selectable language.
type LanguageInfo struct {
	Code       pkg.Language `json:"code"`
	Name       string       `json:"name"`
	NativeName string       `json:"native_name"`
}

var languageNames = map[pkg.Language][2]string{
	pkg.LanguageEnglish:  {"English", "English"},
	pkg.LanguageHindi:    {"Hindi", "हिन्दी"},
	pkg.LanguageKannada:  {"Kannada", "ಕನ್ನಡ"},
	pkg.LanguageMarathi:  {"Marathi", "मराठी"},
	pkg.LanguageTelugu:   {"Telugu", "తెలుగు"},
	pkg.LanguageTamil:    {"Tamil", "தமிழ்"},
	pkg.LanguageBengali:  {"Bengali", "বাংলা"},
	pkg.LanguageGujarati: {"Gujarati", "ગુજરાતી"},
}

// Languages lists the supported languages with their display names.
func Languages() []LanguageInfo {
	out := make([]LanguageInfo, 0, len(pkg.AllLanguages))
	for _, l := range pkg.AllLanguages {
		n := languageNames[l]
		out = append(out, LanguageInfo{Code: l, Name: n[0], NativeName: n[1]})
	}
	return out
}
