package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"example.com/scholarshield/backend/internal/models"
)

const defaultTop = 3

var (
	indexNamePattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)
	slugPattern      = regexp.MustCompile(`[^a-z0-9]+`)
)

// Chunk описывает один фрагмент справочника для индексации.
type Chunk struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Source  string `json:"source"`
	Section string `json:"section"`
	Page    string `json:"page"`
}

// Searcher выполняет поиск фрагментов политики в индексе справочника.
type Searcher interface {
	Search(ctx context.Context, query, index string, top int) ([]models.PolicySnippet, error)
}

// Indexer создает поисковый индекс и загружает в него фрагменты.
type Indexer interface {
	CreateIndex(ctx context.Context, name string, chunks []Chunk) error
}

// BuildQuery собирает поисковый запрос из суммы и срока оплаты счета.
func BuildQuery(bill models.BillData) string {
	amount := float64(bill.TotalAmountCents) / 100
	return fmt.Sprintf("tuition payment extension policies for $%.2f due on %s", amount, bill.DueDate)
}

// ValidIndexName проверяет имя индекса: строчные буквы, цифры и дефисы не по краям.
func ValidIndexName(name string) bool {
	return len(name) <= 128 && indexNamePattern.MatchString(name)
}

// NewIndexName генерирует уникальное имя индекса из названия университета.
func NewIndexName(base string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if slug == "" {
		slug = "handbook"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return slug + "-" + suffix
}
