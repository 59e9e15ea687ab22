package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"example.com/scholarshield/backend/internal/llm"
	"example.com/scholarshield/backend/internal/models"
)

const grantWriterSystemPrompt = `You are an empathetic financial advocate for FGLI (First-Generation, Low-Income) students.
Your role is to write persuasive, formal essays for grant applications that highlight the student's resilience
and specific financial barriers.

Guidelines:
- Write approximately 300 words
- Focus on resilience and overcoming challenges
- Be specific about financial barriers
- Use a formal, respectful tone
- Highlight the student's achievements despite obstacles
- Emphasize how the grant would make a meaningful difference
- Do not include placeholders or bracketed text`

// LLMGrantWriter пишет эссе для заявки на грант через языковую модель.
type LLMGrantWriter struct {
	client llm.Client
}

// NewLLMGrantWriter создает автора эссе на основе языковой модели.
func NewLLMGrantWriter(client llm.Client) *LLMGrantWriter {
	return &LLMGrantWriter{client: client}
}

// Write просит модель написать эссе по профилю студента и требованиям гранта.
func (w *LLMGrantWriter) Write(ctx context.Context, profile models.StudentProfile, requirements, policyContext string) (string, string, []byte, error) {
	prompt := buildGrantPrompt(profile, requirements, policyContext)
	messages := []llm.Message{
		{Role: "system", Content: grantWriterSystemPrompt},
		{Role: "user", Content: prompt},
	}

	content, raw, err := w.client.Chat(ctx, llm.ChatRequest{
		Messages:    messages,
		Temperature: 0.8,
		MaxTokens:   500,
	})
	if err != nil {
		return "", prompt, raw, err
	}

	essay := strings.TrimSpace(content)
	if essay == "" {
		return "", prompt, raw, errors.New("grant essay is empty")
	}
	return essay, prompt, raw, nil
}

func buildGrantPrompt(profile models.StudentProfile, requirements, policyContext string) string {
	prompt := fmt.Sprintf(`Write a grant application essay for the following student:

Student Profile:
- Major: %s
- GPA: %s
- Hardship Reason: %s
- Academic Year: %s

Grant Requirements:
%s`,
		orNotSpecified(profile.Major), orNotSpecified(profile.GPA),
		orNotSpecified(profile.HardshipReason), orNotSpecified(profile.Year), requirements)

	if strings.TrimSpace(policyContext) != "" {
		prompt += fmt.Sprintf("\n\nRelevant University Policies:\n%s", policyContext)
	}
	prompt += "\n\nWrite a compelling 300-word essay that demonstrates the student's need and merit."
	return prompt
}

func orNotSpecified(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Not specified"
	}
	return value
}
