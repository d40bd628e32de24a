package core

import "arogya-intake/pkg"

// remedies holds the traditional remedies keyed by canonical symptom tag.
var remedies = map[string][]pkg.TraditionalRemedy{
	"cough": {
		{
			Name:        "Haldi Doodh (Golden Milk)",
			Ingredients: []string{"1 cup warm milk", "1/2 tsp turmeric", "1/4 tsp black pepper", "honey to taste"},
			Preparation: "Mix turmeric and black pepper in warm milk. Add honey.",
			Usage:       "Drink before bedtime",
			Benefits:    "Anti-inflammatory properties help soothe throat and reduce cough",
			Language:    pkg.LanguageEnglish,
		},
	},
	"indigestion": {
		{
			Name:        "Ajwain Water",
			Ingredients: []string{"1 tsp ajwain (carom seeds)", "1 cup warm water", "pinch of salt"},
			Preparation: "Boil ajwain in water for 5 minutes, strain and add salt",
			Usage:       "Drink after meals",
			Benefits:    "Helps improve digestion and reduces bloating",
			Language:    pkg.LanguageEnglish,
		},
	},
	"fever": {
		{
			Name:        "Tulsi Kadha",
			Ingredients: []string{"8-10 tulsi (holy basil) leaves", "1 inch ginger", "2 cups water", "honey to taste"},
			Preparation: "Boil tulsi and crushed ginger in water until reduced to half, strain and add honey once warm",
			Usage:       "Sip warm, twice daily",
			Benefits:    "Traditionally used to ease feverishness and support recovery",
			Language:    pkg.LanguageEnglish,
		},
	},
	"nausea": {
		{
			Name:        "Ginger Lemon Water",
			Ingredients: []string{"1 tsp grated ginger", "juice of half a lemon", "1 cup warm water"},
			Preparation: "Steep ginger in warm water for 5 minutes, strain and add lemon juice",
			Usage:       "Take small sips when feeling queasy",
			Benefits:    "Ginger is commonly used to settle the stomach",
			Language:    pkg.LanguageEnglish,
		},
	},
}

// wellnessRemedy is suggested when nothing more specific applies.
var wellnessRemedy = pkg.TraditionalRemedy{
	Name:        "General Wellness Tea",
	Ingredients: []string{"Ginger", "Honey", "Warm water"},
	Preparation: "Boil ginger in water, add honey",
	Usage:       "Drink warm, twice daily",
	Benefits:    "Supports general wellness and immunity",
	Language:    pkg.LanguageEnglish,
}

// Remedies returns a copy of the remedies registered for a symptom tag.
func Remedies(tag string) []pkg.TraditionalRemedy {
	rs := remedies[tag]
	out := make([]pkg.TraditionalRemedy, len(rs))
	for i, r := range rs {
		r.Ingredients = append([]string(nil), r.Ingredients...)
		out[i] = r
	}
	return out
}

// WellnessRemedy returns the generic remedy localised to lang.
func WellnessRemedy(lang pkg.Language) pkg.TraditionalRemedy {
	r := wellnessRemedy
	r.Ingredients = append([]string(nil), r.Ingredients...)
	r.Language = lang.OrDefault()
	return r
}
