package agents

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"example.com/scholarshield/backend/internal/llm"
	"example.com/scholarshield/backend/internal/models"
	"example.com/scholarshield/backend/internal/translate"
)

const explainerSystemPrompt = `You are a bilingual financial aid assistant helping a student explain a bill to their parents.
DO NOT use technical terms like 'Bursar', 'Arrears', or 'Deductible'.
DO use simple, family-oriented language.
Example Input: 'Risk Critical. $1200 due.'
Example Output: 'Mom, Dad, we have a school bill due soon, but I found a plan to extend the deadline so we can handle it safely.'

Keep responses to maximum 2 sentences. Be calm, reassuring, and focus on the solution, not just the debt.`

// LLMExplainer готовит объяснение для родителей: резюме, перевод и озвучка.
type LLMExplainer struct {
	client     llm.Client
	translator translate.Translator
	speech     translate.Synthesizer
}

// NewLLMExplainer создает объяснителя с переводчиком и синтезатором речи.
func NewLLMExplainer(client llm.Client, translator translate.Translator, speech translate.Synthesizer) *LLMExplainer {
	return &LLMExplainer{
		client:     client,
		translator: translator,
		speech:     speech,
	}
}

// Explain строит спокойное объяснение ситуации, переводит его и озвучивает.
func (e *LLMExplainer) Explain(ctx context.Context, riskSummary, language string) (models.ParentExplanation, string, []byte, error) {
	prompt := buildExplainerPrompt(riskSummary)
	messages := []llm.Message{
		{Role: "system", Content: explainerSystemPrompt},
		{Role: "user", Content: prompt},
	}

	content, raw, err := e.client.Chat(ctx, llm.ChatRequest{
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   100,
	})
	if err != nil {
		return models.ParentExplanation{}, prompt, raw, err
	}

	summary := strings.TrimSpace(content)
	if summary == "" {
		return models.ParentExplanation{}, prompt, raw, errors.New("parent summary is empty")
	}

	translated := summary
	if language != "en" {
		translated, err = e.translator.Translate(ctx, summary, language)
		if err != nil {
			return models.ParentExplanation{}, prompt, raw, err
		}
	}

	voice := translate.VoiceFor(language)
	audio, err := e.speech.Synthesize(ctx, translated, voice)
	if err != nil {
		return models.ParentExplanation{}, prompt, raw, err
	}

	return models.ParentExplanation{
		OriginalSummary: summary,
		TranslatedText:  translated,
		Language:        language,
		Voice:           voice,
		AudioBase64:     base64.StdEncoding.EncodeToString(audio),
	}, prompt, raw, nil
}

func buildExplainerPrompt(riskSummary string) string {
	return fmt.Sprintf(`Explain this financial situation to a parent in simple, reassuring language (max 2 sentences):

%s

Focus on the solution and stay calm and reassuring.`, riskSummary)
}
