package search

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"example.com/scholarshield/backend/internal/models"
)

var termPattern = regexp.MustCompile(`[a-z0-9]+`)

// Memory хранит поисковые индексы в памяти и ранжирует фрагменты по пересечению термов.
type Memory struct {
	mu      sync.RWMutex
	indexes map[string][]Chunk
}

// NewMemory создает пустое хранилище индексов в памяти.
func NewMemory() *Memory {
	return &Memory{indexes: make(map[string][]Chunk)}
}

// SeedDefaultPolicies заполняет индекс встроенными выдержками из университетского справочника.
func (m *Memory) SeedDefaultPolicies(index string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexes[index] = defaultPolicyChunks()
}

// CreateIndex сохраняет фрагменты справочника под указанным именем индекса.
func (m *Memory) CreateIndex(ctx context.Context, name string, chunks []Chunk) error {
	if !ValidIndexName(name) {
		return fmt.Errorf("invalid index name %q", name)
	}
	copied := make([]Chunk, len(chunks))
	copy(copied, chunks)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexes[name] = copied
	return nil
}

// Search возвращает top фрагментов индекса, отсортированных по убыванию релевантности.
func (m *Memory) Search(ctx context.Context, query, index string, top int) ([]models.PolicySnippet, error) {
	m.mu.RLock()
	chunks, ok := m.indexes[index]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("search index %q not found", index)
	}
	if top <= 0 {
		top = defaultTop
	}

	terms := queryTerms(query)
	snippets := make([]models.PolicySnippet, 0, len(chunks))
	for _, chunk := range chunks {
		snippets = append(snippets, models.PolicySnippet{
			Content: chunk.Content,
			Source:  chunk.Source,
			Score:   overlapScore(terms, chunk.Content),
			Section: chunk.Section,
			Page:    chunk.Page,
		})
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Score > snippets[j].Score
	})
	if len(snippets) > top {
		snippets = snippets[:top]
	}
	return snippets, nil
}

func queryTerms(query string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, term := range termPattern.FindAllString(strings.ToLower(query), -1) {
		if len(term) < 4 {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

func overlapScore(terms []string, content string) float64 {
	if len(terms) == 0 {
		return 0
	}
	contentTerms := make(map[string]struct{})
	for _, term := range termPattern.FindAllString(strings.ToLower(content), -1) {
		contentTerms[term] = struct{}{}
	}

	matched := 0
	for _, term := range terms {
		if _, ok := contentTerms[term]; ok {
			matched++
		}
	}
	return math.Round(float64(matched)/float64(len(terms))*100) / 100
}

func defaultPolicyChunks() []Chunk {
	return []Chunk{
		{
			ID:      "0",
			Content: "Bylaw 4.2: Hardship Extension - Students facing financial hardship may request an extension of up to 30 days for tuition payment deadlines. Requests must be submitted in writing to the Bursar's Office with documentation of hardship.",
			Source:  "University Handbook 2024, Section 4.2",
			Section: "4.2",
			Page:    "42",
		},
		{
			ID:      "1",
			Content: "Emergency Grant Program: Available to FGLI students who demonstrate urgent financial need. Grants range from $200-$1000 and are awarded within 48 hours of application submission.",
			Source:  "Financial Aid Handbook, Emergency Grants Section",
			Section: "Emergency Grants",
			Page:    "15",
		},
		{
			ID:      "2",
			Content: "Late Payment Fees: Standard late payment fee is $50. However, students with approved hardship extensions are exempt from late fees if payment is made within the extension period.",
			Source:  "University Handbook 2024, Section 4.3",
			Section: "4.3",
			Page:    "43",
		},
	}
}
