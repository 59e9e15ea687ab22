package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/scholarshield/backend/internal/models"
)

const defaultListLimit = 50

// Archive хранит завершенные кейсы и журнал обращений к агентам.
type Archive interface {
	SaveCase(ctx context.Context, record models.CaseRecord) error
	GetCase(ctx context.Context, id uuid.UUID) (models.CaseRecord, error)
	ListCases(ctx context.Context, limit int) ([]CaseSummary, error)
	LogAgentRequest(ctx context.Context, entry models.AgentRequest) error
	ListAgentRequests(ctx context.Context, caseID uuid.UUID) ([]models.AgentRequest, error)
}

// CaseSummary описывает кейс в списках без полного тела оценки.
type CaseSummary struct {
	ID               uuid.UUID         `json:"id"`
	VendorName       string            `json:"vendor_name"`
	InvoiceID        string            `json:"invoice_id"`
	TotalAmountCents int64             `json:"total_amount_cents"`
	DueDate          string            `json:"due_date"`
	RiskLevel        models.RiskLevel  `json:"risk_level"`
	Status           models.CaseStatus `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
}

// SummarizeCase строит краткое описание кейса для списков и экспорта.
func SummarizeCase(record models.CaseRecord) CaseSummary {
	return CaseSummary{
		ID:               record.ID,
		VendorName:       record.Assessment.Bill.VendorName,
		InvoiceID:        record.Assessment.Bill.InvoiceID,
		TotalAmountCents: record.Assessment.Bill.TotalAmountCents,
		DueDate:          record.Assessment.Bill.DueDate,
		RiskLevel:        record.Assessment.RiskLevel,
		Status:           record.Assessment.Status,
		CreatedAt:        record.CreatedAt,
	}
}
