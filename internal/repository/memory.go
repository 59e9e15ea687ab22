package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/scholarshield/backend/internal/models"
)

// MemoryArchive хранит кейсы в памяти процесса для демо-режима.
type MemoryArchive struct {
	mu       sync.RWMutex
	cases    map[uuid.UUID]models.CaseRecord
	order    []uuid.UUID
	requests []models.AgentRequest
}

// NewMemoryArchive создает пустой архив в памяти.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		cases: make(map[uuid.UUID]models.CaseRecord),
	}
}

// SaveCase сохраняет кейс, перезаписывая существующий с тем же идентификатором.
func (a *MemoryArchive) SaveCase(ctx context.Context, record models.CaseRecord) error {
	if record.ID == uuid.Nil {
		return ErrInvalid
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.cases[record.ID]; !exists {
		a.order = append(a.order, record.ID)
	}
	a.cases[record.ID] = record

	return nil
}

// GetCase возвращает кейс по идентификатору.
func (a *MemoryArchive) GetCase(ctx context.Context, id uuid.UUID) (models.CaseRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	record, ok := a.cases[id]
	if !ok {
		return models.CaseRecord{}, ErrNotFound
	}
	return record, nil
}

// ListCases возвращает последние кейсы, новые первыми.
func (a *MemoryArchive) ListCases(ctx context.Context, limit int) ([]CaseSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	summaries := make([]CaseSummary, 0, limit)
	for i := len(a.order) - 1; i >= 0 && len(summaries) < limit; i-- {
		summaries = append(summaries, SummarizeCase(a.cases[a.order[i]]))
	}
	return summaries, nil
}

// LogAgentRequest сохраняет обращение к агенту для аудита.
func (a *MemoryArchive) LogAgentRequest(ctx context.Context, entry models.AgentRequest) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, entry)
	return nil
}

// ListAgentRequests возвращает журнал обращений агентов по кейсу.
func (a *MemoryArchive) ListAgentRequests(ctx context.Context, caseID uuid.UUID) ([]models.AgentRequest, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entries := make([]models.AgentRequest, 0)
	for _, entry := range a.requests {
		if entry.CaseID == caseID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
