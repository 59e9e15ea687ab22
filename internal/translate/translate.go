package translate

import "context"

const fallbackLanguage = "en"

var languageVoices = map[string]string{
	"es":      "es-MX-DaliaNeural",
	"hi":      "hi-IN-SwaraNeural",
	"zh-Hans": "zh-CN-XiaoxiaoNeural",
	"ar":      "ar-EG-SalmaNeural",
	"en":      "en-US-AriaNeural",
}

// Translator переводит английский текст на язык семьи студента.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Synthesizer озвучивает текст выбранным нейронным голосом.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// SupportedLanguages возвращает коды языков для общения с родителями.
func SupportedLanguages() []string {
	return []string{"es", "hi", "zh-Hans", "ar", "en"}
}

// Supported проверяет, поддерживается ли код языка.
func Supported(language string) bool {
	_, ok := languageVoices[language]
	return ok
}

// VoiceFor возвращает нейронный голос для указанного языка.
func VoiceFor(language string) string {
	if voice, ok := languageVoices[language]; ok {
		return voice
	}
	return languageVoices[fallbackLanguage]
}
