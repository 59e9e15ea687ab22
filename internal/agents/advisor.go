package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"example.com/scholarshield/backend/internal/llm"
	"example.com/scholarshield/backend/internal/models"
)

const advisorSystemPrompt = `You are a helpful financial aid advisor for FGLI (First-Generation, Low-Income) students.
You provide advice based STRICTLY on the provided university handbook context.
Always cite the specific section or bylaw you reference.
Be empathetic, clear, and actionable in your responses.

You MUST return your response as valid JSON with the following structure:
{
  "summary": "One sentence summary of the policy",
  "citations": ["List of specific sections cited"],
  "actionable_step": "The immediate physical step the student should take (e.g. 'Fill out Form 10B')"
}`

const fallbackActionableStep = "Contact the Bursar's Office"

var adviceSchema = jsonschema.MustCompileString("advice.json", `{
	"type": "object",
	"required": ["summary", "actionable_step"],
	"properties": {
		"summary": {"type": "string", "minLength": 1},
		"citations": {"type": "array", "items": {"type": "string"}},
		"actionable_step": {"type": "string", "minLength": 1}
	}
}`)

type adviceResponse struct {
	Summary        string   `json:"summary"`
	Citations      []string `json:"citations"`
	ActionableStep string   `json:"actionable_step"`
}

// LLMAdvisor формирует рекомендации по найденным фрагментам через языковую модель.
type LLMAdvisor struct {
	client llm.Client
}

// NewLLMAdvisor создает советника на основе языковой модели.
func NewLLMAdvisor(client llm.Client) *LLMAdvisor {
	return &LLMAdvisor{client: client}
}

// Advise запрашивает у модели рекомендации в формате JSON и валидирует ответ.
func (a *LLMAdvisor) Advise(ctx context.Context, snippets []models.PolicySnippet, query string) (models.PolicyAdvice, string, []byte, error) {
	prompt := buildAdvisorPrompt(snippets, query)
	messages := []llm.Message{
		{Role: "system", Content: advisorSystemPrompt},
		{Role: "user", Content: prompt},
	}

	content, raw, err := a.client.Chat(ctx, llm.ChatRequest{
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return models.PolicyAdvice{}, prompt, raw, err
	}

	sources := snippetSources(snippets)
	parsed, err := parseAdviceJSON(content)
	if err != nil {
		return models.PolicyAdvice{
			Summary:        truncate(content, 200),
			Citations:      sources,
			ActionableStep: fallbackActionableStep,
			Confidence:     models.ConfidenceMedium,
		}, prompt, raw, nil
	}

	confidence := models.ConfidenceLow
	if len(snippets) > 0 {
		confidence = models.ConfidenceHigh
	}

	return models.PolicyAdvice{
		Summary:        parsed.Summary,
		Citations:      mergeCitations(sources, parsed.Citations),
		ActionableStep: parsed.ActionableStep,
		Confidence:     confidence,
	}, prompt, raw, nil
}

func buildAdvisorPrompt(snippets []models.PolicySnippet, query string) string {
	return fmt.Sprintf(`Based on the following university handbook excerpts, answer the student's question in JSON format:

%s

Student Question: %s

Return ONLY valid JSON with the structure:
{
  "summary": "One sentence summary of the policy and recommendation",
  "citations": ["List of specific sections cited from the handbook"],
  "actionable_step": "The immediate concrete step the student should take"
}`, buildPolicyContext(snippets), query)
}

func buildPolicyContext(snippets []models.PolicySnippet) string {
	parts := make([]string, 0, len(snippets))
	for _, snippet := range snippets {
		source := snippet.Source
		if source == "" {
			source = "Unknown"
		}
		section := snippet.Section
		if section == "" {
			section = "N/A"
		}
		parts = append(parts, fmt.Sprintf("[Source: %s, Section: %s]\n%s", source, section, snippet.Content))
	}
	return strings.Join(parts, "\n\n")
}

func parseAdviceJSON(content string) (adviceResponse, error) {
	payload := extractJSON(content)
	if payload == "" {
		return adviceResponse{}, errors.New("ai response does not contain json")
	}

	var generic any
	if err := json.Unmarshal([]byte(payload), &generic); err != nil {
		return adviceResponse{}, err
	}
	if err := adviceSchema.Validate(generic); err != nil {
		return adviceResponse{}, fmt.Errorf("advice json does not match schema: %w", err)
	}

	var parsed adviceResponse
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return adviceResponse{}, err
	}
	return parsed, nil
}

func mergeCitations(sources, extra []string) []string {
	seen := make(map[string]struct{}, len(sources)+len(extra))
	merged := make([]string, 0, len(sources)+len(extra))
	for _, group := range [][]string{sources, extra} {
		for _, citation := range group {
			citation = strings.TrimSpace(citation)
			if citation == "" {
				continue
			}
			if _, ok := seen[citation]; ok {
				continue
			}
			seen[citation] = struct{}{}
			merged = append(merged, citation)
		}
	}
	return merged
}
