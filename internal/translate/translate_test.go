package translate

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

// TestVoiceFor проверяет подбор нейронного голоса по коду языка.
func TestVoiceFor(t *testing.T) {
	if voice := VoiceFor("es"); voice != "es-MX-DaliaNeural" {
		t.Fatalf("VoiceFor(es) = %q, want es-MX-DaliaNeural", voice)
	}
	if voice := VoiceFor("zh-Hans"); voice != "zh-CN-XiaoxiaoNeural" {
		t.Fatalf("VoiceFor(zh-Hans) = %q, want zh-CN-XiaoxiaoNeural", voice)
	}
	if voice := VoiceFor("fr"); voice != "en-US-AriaNeural" {
		t.Fatalf("VoiceFor(fr) = %q, want english fallback voice", voice)
	}
}

// TestSupported проверяет список поддерживаемых языков.
func TestSupported(t *testing.T) {
	for _, language := range SupportedLanguages() {
		if !Supported(language) {
			t.Fatalf("Supported(%q) = false, want true", language)
		}
	}
	if Supported("fr") {
		t.Fatal("Supported(fr) = true, want false")
	}
}

// TestStubTranslatorUrgent проверяет заготовленный перевод для критического случая.
func TestStubTranslatorUrgent(t *testing.T) {
	translator := NewStubTranslator()

	text, err := translator.Translate(context.Background(), "Risk CRITICAL. $1200.00 due on 2024-03-16.", "es")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if !strings.Contains(text, "factura escolar que vence pronto") {
		t.Fatalf("Translate() = %q, want urgent spanish text", text)
	}
}

// TestStubTranslatorCalm проверяет заготовленный перевод для обычного случая.
func TestStubTranslatorCalm(t *testing.T) {
	translator := NewStubTranslator()

	text, err := translator.Translate(context.Background(), "Risk SAFE. $200.00 due on 2024-06-01.", "hi")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if text != stubCalmTexts["hi"] {
		t.Fatalf("Translate() = %q, want calm hindi text", text)
	}
}

// TestStubTranslatorEnglish проверяет, что английский текст возвращается без изменений.
func TestStubTranslatorEnglish(t *testing.T) {
	translator := NewStubTranslator()

	original := "Risk CRITICAL. $1200.00 due tomorrow."
	text, err := translator.Translate(context.Background(), original, "en")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if text != original {
		t.Fatalf("Translate() = %q, want original text", text)
	}
}

// TestStubSpeech проверяет формат аудиозаглушки.
func TestStubSpeech(t *testing.T) {
	speech := NewStubSpeech()

	audio, err := speech.Synthesize(context.Background(), "hola", "es-MX-DaliaNeural")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if len(audio) != 40 {
		t.Fatalf("Synthesize() returned %d bytes, want 40", len(audio))
	}
	if !bytes.HasPrefix(audio, []byte("RIFF")) {
		t.Fatalf("Synthesize() audio does not start with RIFF header")
	}
}

// TestVoiceLocale проверяет выделение локали из имени голоса.
func TestVoiceLocale(t *testing.T) {
	if locale := voiceLocale("ar-EG-SalmaNeural"); locale != "ar-EG" {
		t.Fatalf("voiceLocale() = %q, want ar-EG", locale)
	}
	if locale := voiceLocale("broken"); locale != "en-US" {
		t.Fatalf("voiceLocale() = %q, want en-US fallback", locale)
	}
}
