package translate

import (
	"context"
	"strings"
)

var stubUrgentTexts = map[string]string{
	"es":      "Mamá, Papá, tenemos una factura escolar que vence pronto, pero encontré un plan para extender la fecha límite para que podamos manejarla de manera segura.",
	"hi":      "माँ, पापा, हमारे पास जल्द ही एक स्कूल बिल है, लेकिन मुझे समय सीमा बढ़ाने का एक तरीका मिला है ताकि हम इसे सुरक्षित रूप से संभाल सकें।",
	"zh-Hans": "妈妈，爸爸，我们有一张学校账单很快就要到期了，但我找到了一个延长截止日期的计划，这样我们就能安全地处理它。",
	"ar":      "أمي، أبي، لدينا فاتورة مدرسية مستحقة قريبًا، لكنني وجدت خطة لتمديد الموعد النهائي حتى نتمكن من التعامل معها بأمان.",
}

var stubCalmTexts = map[string]string{
	"es":      "Tenemos una factura escolar, pero tenemos tiempo y opciones para manejarla.",
	"hi":      "हमारे पास एक स्कूल बिल है, लेकिन हमारे पास समय और विकल्प हैं।",
	"zh-Hans": "我们有一张学校账单，但我们有时间来处理它。",
	"ar":      "لدينا فاتورة مدرسية، لكن لدينا الوقت للتعامل معها.",
}

// StubTranslator возвращает заготовленные переводы для работы без внешних сервисов.
type StubTranslator struct{}

// NewStubTranslator создает переводчик-заглушку.
func NewStubTranslator() *StubTranslator {
	return &StubTranslator{}
}

// Translate возвращает заготовленный перевод для поддерживаемого языка.
func (t *StubTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	texts := stubCalmTexts
	if strings.Contains(strings.ToUpper(text), "CRITICAL") {
		texts = stubUrgentTexts
	}
	if translated, ok := texts[targetLanguage]; ok {
		return translated, nil
	}
	return text, nil
}

// StubSpeech возвращает минимальную WAV-заглушку вместо синтеза речи.
type StubSpeech struct{}

// NewStubSpeech создает синтезатор-заглушку.
func NewStubSpeech() *StubSpeech {
	return &StubSpeech{}
}

// Synthesize возвращает пустое аудио с заголовком RIFF.
func (s *StubSpeech) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	audio := make([]byte, 40)
	copy(audio, "RIFF")
	return audio, nil
}
