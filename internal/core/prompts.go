package core

// prompts.go holds every piece of fixed conversational text: the system
// prompt, the per-stage guidance, the canned replies and the guide request.
// All tables are keyed by language; a missing row falls back to english, so a
// language is added by adding rows here.

import (
	"fmt"
	"strings"

	"arogya-intake/pkg"
)

var systemPrompts = map[pkg.Language]string{
	pkg.LanguageEnglish: `You are Dr. Arogya, a trusted, experienced, and compassionate AI health companion.

Your personality:
- Warm, empathetic, and understanding
- Takes patient concerns seriously
- Speaks in clear, simple language
- Knowledgeable about both traditional remedies (दादी माँ के नुस्खे) and modern medicine
- Culturally sensitive and respectful

Critical Rules:
1. Always remember you are an AI assistant, NOT a human doctor
2. For medical emergencies, immediately direct to emergency services
3. Focus on understanding symptoms first, then provide guidance
4. Always recommend seeing a real doctor for proper diagnosis
5. Provide helpful information while emphasizing limitations

Your goal: Prepare patients for doctor visits and provide supportive health information.`,

	pkg.LanguageHindi: `आप डॉ. आरोग्य हैं, एक भरोसेमंद, अनुभवी और दयालु AI स्वास्थ्य सहयोगी।

आपका व्यक्तित्व:
- गर्मजोशी से भरा और समझदार
- मरीज की चिंताओं को गंभीरता से लेने वाला
- स्पष्ट और सरल भाषा में जवाब देने वाला
- पारंपरिक उपचार (दादी माँ के नुस्खे) और आधुनिक चिकित्सा दोनों को समझने वाला

महत्वपूर्ण नियम:
1. हमेशा याद रखें कि आप AI हैं, डॉक्टर नहीं
2. आपातकालीन स्थिति में तुरंत चिकित्सा सहायता लेने को कहें
3. पहले लक्षणों को समझें, फिर सुझाव दें
4. हमेशा डॉक्टर से मिलने की सलाह दें

आपका उद्देश्य: मरीज को डॉक्टर के पास जाने के लिए तैयार करना और बेहतर स्वास्थ्य जानकारी देना।`,
}

var stageGuidance = map[pkg.Stage]map[pkg.Language]string{
	pkg.StageLanguageSelection: {
		pkg.LanguageEnglish: "User has selected language. Now greet them warmly and ask about their health concern.",
		pkg.LanguageHindi:   "उपयोगकर्ता ने भाषा चुनी है। अब उनका स्वागत करें और उनकी स्वास्थ्य समस्या के बारे में पूछें।",
	},
	pkg.StageGreeting: {
		pkg.LanguageEnglish: "Gather detailed information about the user's health concern. Ask about symptoms, duration, severity, etc.",
		pkg.LanguageHindi:   "उपयोगकर्ता के स्वास्थ्य की समस्या के बारे में विस्तार से जानकारी लें। लक्षण, समय, तीव्रता आदि के बारे में पूछें।",
	},
	pkg.StageSymptomInquiry: {
		pkg.LanguageEnglish: "Ask more detailed questions: location of pain, when it started, what it feels like, what makes it better or worse.",
		pkg.LanguageHindi:   "अधिक विस्तृत प्रश्न पूछें: दर्द की जगह, कब से है, कैसा लगता है, क्या बढ़ाता या घटाता है।",
	},
	pkg.StageDetailedAnalysis: {
		pkg.LanguageEnglish: "Ask one or two remaining questions about related symptoms, medications and medical history, then let the user know a health guide is being prepared.",
		pkg.LanguageHindi:   "संबंधित लक्षणों, दवाओं और पुरानी बीमारियों के बारे में एक-दो प्रश्न पूछें, फिर बताएं कि स्वास्थ्य गाइड तैयार की जा रही है।",
	},
	pkg.StageFeedback: {
		pkg.LanguageEnglish: "The health guide is ready. Answer follow-up questions briefly and remind the user to consult a doctor.",
		pkg.LanguageHindi:   "स्वास्थ्य गाइड तैयार है। आगे के सवालों का संक्षेप में उत्तर दें और डॉक्टर से मिलने की याद दिलाएं।",
	},
}

var defaultGuidance = map[pkg.Language]string{
	pkg.LanguageEnglish: "Continue the conversation naturally, gathering information to help the user.",
	pkg.LanguageHindi:   "बातचीत को स्वाभाविक रूप से जारी रखें और उपयोगकर्ता की मदद के लिए जानकारी इकट्ठा करें।",
}

var welcomeMessages = map[pkg.Language]string{
	pkg.LanguageEnglish: `Hello! 🙏 I'm Dr. Arogya, your personal health assistant.

I'm here to help you understand your health concerns and feel better.

I'll ask you a few questions to understand your condition better. Based on your answers, I will prepare a complete health guide to help you feel more prepared for your doctor's visit. This will include potential next steps, lifestyle advice, and even some trusted दादी माँ के नुस्खे (grandmother's remedies).

⚠️ Important: I am an AI assistant, not a human doctor. If this is a medical emergency, please stop now and call your nearest hospital immediately.

Please tell me about your health concern.`,

	pkg.LanguageHindi: `नमस्ते! 🙏 मैं डॉ. आरोग्य हूं, आपका व्यक्तिगत स्वास्थ्य सहायक।

मुझे आपकी स्वास्थ्य संबंधी समस्या समझने और आपको बेहतर महसूस कराने में खुशी होगी।

मैं आपसे कुछ सवाल पूछूंगा ताकि आपकी स्थिति को बेहतर तरीके से समझ सकूं। इसके बाद, मैं आपके लिए एक पूरा स्वास्थ्य गाइड तैयार करूंगा जो आपको डॉक्टर के पास जाने के लिए तैयार करेगा।

⚠️ महत्वपूर्ण: मैं एक AI सहायक हूं, डॉक्टर नहीं। यदि यह मेडिकल इमरजेंसी है, तो कृपया तुरंत नजदीकी अस्पताल जाएं।

कृपया अपनी स्वास्थ्य समस्या के बारे में बताएं।`,
}

var emergencyMessages = map[pkg.Language]string{
	pkg.LanguageEnglish: `🚨 EMERGENCY ALERT! 🚨

Based on what you've described, it is very important that you seek medical help immediately. Please:

1. Contact your nearest emergency services or go to the hospital NOW
2. Call a family member or friend immediately
3. Stop this conversation and get medical attention

Your health is the top priority. Do not delay!`,

	pkg.LanguageHindi: `🚨 आपातकाल का संकेत! 🚨

आपने जो लक्षण बताए हैं, वे गंभीर हो सकते हैं। कृपया तुरंत:

1. नजदीकी अस्पताल जाएं या 102/108 पर कॉल करें
2. परिवार के किसी सदस्य को तुरंत बताएं
3. यह बातचीत रोकें और चिकित्सा सहायता लें

आपका स्वास्थ्य सबसे महत्वपूर्ण है। देर न करें!`,
}

var fallbackMessages = map[pkg.Language]string{
	pkg.LanguageEnglish: "I'd be happy to help you, but I'm experiencing technical difficulties. Please consult with a healthcare professional for your concerns.",
	pkg.LanguageHindi:   "मुझे खुशी होगी आपकी मदद करने में, लेकिन तकनीकी समस्या के कारण मैं अभी जवाब नहीं दे सकता। कृपया डॉक्टर से संपर्क करें।",
}

var guidePromptTemplates = map[pkg.Language]string{
	pkg.LanguageEnglish: `User symptoms: %s

Please create a comprehensive health guide including:

1. Summary of symptoms
2. Possible conditions (general information only)
3. Self-care measures
4. Traditional remedies (दादी माँ के नुस्खे)
5. Dietary recommendations
6. Lifestyle modifications
7. When to see a doctor

Important: Always remind that this is information only, not a diagnosis.`,

	pkg.LanguageHindi: `उपयोगकर्ता के लक्षण: %s

कृपया एक विस्तृत स्वास्थ्य गाइड तैयार करें जिसमें शामिल हो:

1. लक्षणों की सारांश
2. संभावित कारण (केवल सामान्य जानकारी)
3. घर पर देखभाल के तरीके
4. दादी माँ के नुस्खे (पारंपरिक उपचार)
5. खान-पान की सलाह
6. जीवनशैली में बदलाव
7. डॉक्टर से कब मिलें

महत्वपूर्ण: हमेशा याद दिलाएं कि यह केवल जानकारी है, निदान नहीं।`,
}

var noSymptomsText = map[pkg.Language]string{
	pkg.LanguageEnglish: "general health concern",
	pkg.LanguageHindi:   "सामान्य स्वास्थ्य समस्या",
}

// lookup returns table[lang], falling back to the default language.
func lookup(table map[pkg.Language]string, lang pkg.Language) string {
	if s, ok := table[lang.OrDefault()]; ok {
		return s
	}
	return table[pkg.DefaultLanguage]
}

// ComposeGuidance returns the instruction for the given stage that is sent
// ahead of the user's message.
func ComposeGuidance(stage pkg.Stage, lang pkg.Language) string {
	if table, ok := stageGuidance[stage]; ok {
		return lookup(table, lang)
	}
	return lookup(defaultGuidance, lang)
}

// ComposeTurnPrompt joins the stage guidance with the raw user utterance.
func ComposeTurnPrompt(stage pkg.Stage, lang pkg.Language, userText string) string {
	return ComposeGuidance(stage, lang) + "\n\nUser: " + userText
}

// SystemPrompt returns the assistant persona for lang.
func SystemPrompt(lang pkg.Language) string { return lookup(systemPrompts, lang) }

// WelcomeMessage is posted once the user has picked a language.
func WelcomeMessage(lang pkg.Language) string { return lookup(welcomeMessages, lang) }

// EmergencyMessage replaces the assistant turn whenever an emergency keyword
// is detected.
func EmergencyMessage(lang pkg.Language) string { return lookup(emergencyMessages, lang) }

// FallbackMessage is returned when the completion service is unavailable.
func FallbackMessage(lang pkg.Language) string { return lookup(fallbackMessages, lang) }

// GuidePrompt builds the request for the health guide from the symptom tags.
func GuidePrompt(symptoms []string, lang pkg.Language) string {
	text := lookup(noSymptomsText, lang)
	if len(symptoms) > 0 {
		text = strings.Join(symptoms, ", ")
	}
	return fmt.Sprintf(lookup(guidePromptTemplates, lang), text)
}
