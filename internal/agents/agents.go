package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"example.com/scholarshield/backend/internal/models"
)

const (
	dateLayout         = "2006-01-02"
	proposedDateLayout = "January 02, 2006"
	extensionDays      = 14
)

// Advisor готовит рекомендации по политике университета на основе найденных фрагментов.
type Advisor interface {
	Advise(ctx context.Context, snippets []models.PolicySnippet, query string) (models.PolicyAdvice, string, []byte, error)
}

// Negotiator составляет письмо в Bursar's Office с просьбой об отсрочке платежа.
type Negotiator interface {
	Draft(ctx context.Context, bill models.BillData, advice models.PolicyAdvice) (string, string, []byte, error)
}

// GrantWriter пишет эссе для заявки на экстренную финансовую помощь.
type GrantWriter interface {
	Write(ctx context.Context, profile models.StudentProfile, requirements, policyContext string) (string, string, []byte, error)
}

// Explainer объясняет финансовую ситуацию родителям студента на их языке.
type Explainer interface {
	Explain(ctx context.Context, riskSummary, language string) (models.ParentExplanation, string, []byte, error)
}

func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return trimmed[start : end+1]
}

func truncate(text string, limit int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}

func snippetSources(snippets []models.PolicySnippet) []string {
	sources := make([]string, 0, len(snippets))
	for _, snippet := range snippets {
		if strings.TrimSpace(snippet.Source) == "" {
			continue
		}
		sources = append(sources, snippet.Source)
	}
	return sources
}

func moneyUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, groupThousands(cents/100), cents%100)
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	var grouped []string
	for len(digits) > 3 {
		grouped = append([]string{digits[len(digits)-3:]}, grouped...)
		digits = digits[:len(digits)-3]
	}
	if len(grouped) == 0 {
		return digits
	}
	return digits + "," + strings.Join(grouped, ",")
}

func proposedPaymentDate(dueDate string) string {
	due, err := time.Parse(dateLayout, dueDate)
	if err != nil {
		return "two weeks from the original due date"
	}
	return due.AddDate(0, 0, extensionDays).Format(proposedDateLayout)
}
