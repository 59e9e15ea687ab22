package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/scholarshield/backend/internal/models"
)

type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository создает архив кейсов в PostgreSQL.
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

// SaveCase сохраняет кейс вместе с телом оценки.
func (r *CaseRepository) SaveCase(ctx context.Context, record models.CaseRecord) error {
	if record.ID == uuid.Nil {
		return ErrInvalid
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	assessment, err := json.Marshal(record.Assessment)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO cases (id, index_name, assessment, created_at)
		 VALUES ($1, $2, $3::jsonb, $4)`,
		record.ID, record.IndexName, string(assessment), record.CreatedAt,
	)
	return err
}

// GetCase возвращает кейс по идентификатору.
func (r *CaseRepository) GetCase(ctx context.Context, id uuid.UUID) (models.CaseRecord, error) {
	var record models.CaseRecord
	var assessment []byte

	err := r.db.QueryRow(ctx,
		`SELECT id, index_name, assessment, created_at
		 FROM cases
		 WHERE id = $1`,
		id,
	).Scan(&record.ID, &record.IndexName, &assessment, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CaseRecord{}, ErrNotFound
		}
		return models.CaseRecord{}, err
	}

	if err := json.Unmarshal(assessment, &record.Assessment); err != nil {
		return models.CaseRecord{}, err
	}

	return record, nil
}

// ListCases возвращает последние кейсы, новые первыми.
func (r *CaseRepository) ListCases(ctx context.Context, limit int) ([]CaseSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, index_name, assessment, created_at
		 FROM cases
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]CaseSummary, 0)
	for rows.Next() {
		var record models.CaseRecord
		var assessment []byte

		err := rows.Scan(&record.ID, &record.IndexName, &assessment, &record.CreatedAt)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(assessment, &record.Assessment); err != nil {
			return nil, err
		}

		summaries = append(summaries, SummarizeCase(record))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// LogAgentRequest сохраняет обращение к агенту для аудита.
func (r *CaseRepository) LogAgentRequest(ctx context.Context, entry models.AgentRequest) error {
	var caseID *uuid.UUID
	if entry.CaseID != uuid.Nil {
		caseID = &entry.CaseID
	}
	var errorMessage *string
	if entry.Error != "" {
		errorMessage = &entry.Error
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO agent_requests (case_id, agent, prompt, response, error_message)
		 VALUES ($1, $2, $3, $4, $5)`,
		caseID, entry.Agent, entry.Prompt, entry.Response, errorMessage,
	)
	return err
}

// ListAgentRequests возвращает журнал обращений агентов по кейсу.
func (r *CaseRepository) ListAgentRequests(ctx context.Context, caseID uuid.UUID) ([]models.AgentRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT case_id, agent, prompt, response, COALESCE(error_message, ''), created_at
		 FROM agent_requests
		 WHERE case_id = $1
		 ORDER BY created_at`,
		caseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.AgentRequest, 0)
	for rows.Next() {
		var entry models.AgentRequest

		err := rows.Scan(&entry.CaseID, &entry.Agent, &entry.Prompt, &entry.Response, &entry.Error, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
