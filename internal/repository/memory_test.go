package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/scholarshield/backend/internal/models"
)

func sampleRecord(id uuid.UUID, createdAt time.Time) models.CaseRecord {
	return models.CaseRecord{
		ID:        id,
		IndexName: "university-handbook",
		Assessment: models.CaseAssessment{
			Bill: models.BillData{
				TotalAmountCents: 120000,
				DueDate:          "2024-03-16",
				VendorName:       "State University",
				InvoiceID:        "INV-2024-001234",
			},
			RiskLevel: models.RiskCritical,
			Status:    models.CaseStatusCompleted,
		},
		CreatedAt: createdAt,
	}
}

// TestMemoryArchiveSaveGet проверяет сохранение и чтение кейса.
func TestMemoryArchiveSaveGet(t *testing.T) {
	archive := NewMemoryArchive()
	id := uuid.New()
	record := sampleRecord(id, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	if err := archive.SaveCase(context.Background(), record); err != nil {
		t.Fatalf("SaveCase: %v", err)
	}

	got, err := archive.GetCase(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if !reflect.DeepEqual(got, record) {
		t.Errorf("got %+v, want %+v", got, record)
	}
}

// TestMemoryArchiveSaveSetsCreatedAt проверяет подстановку времени сохранения.
func TestMemoryArchiveSaveSetsCreatedAt(t *testing.T) {
	archive := NewMemoryArchive()
	id := uuid.New()

	if err := archive.SaveCase(context.Background(), sampleRecord(id, time.Time{})); err != nil {
		t.Fatalf("SaveCase: %v", err)
	}

	got, err := archive.GetCase(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

// TestMemoryArchiveSaveInvalid проверяет отклонение кейса без идентификатора.
func TestMemoryArchiveSaveInvalid(t *testing.T) {
	archive := NewMemoryArchive()

	if err := archive.SaveCase(context.Background(), models.CaseRecord{}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

// TestMemoryArchiveGetMissing проверяет ошибку для неизвестного кейса.
func TestMemoryArchiveGetMissing(t *testing.T) {
	archive := NewMemoryArchive()

	if _, err := archive.GetCase(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// TestMemoryArchiveListOrder проверяет порядок списка и ограничение размера.
func TestMemoryArchiveListOrder(t *testing.T) {
	archive := NewMemoryArchive()
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		if err := archive.SaveCase(context.Background(), sampleRecord(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("SaveCase: %v", err)
		}
	}

	summaries, err := archive.ListCases(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListCases: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].ID != ids[2] || summaries[1].ID != ids[1] {
		t.Errorf("unexpected order: %s, %s", summaries[0].ID, summaries[1].ID)
	}
}

// TestMemoryArchiveAgentRequests проверяет журнал обращений по кейсу.
func TestMemoryArchiveAgentRequests(t *testing.T) {
	archive := NewMemoryArchive()
	caseID := uuid.New()

	entries := []models.AgentRequest{
		{CaseID: caseID, Agent: "policy_advisor", Prompt: "first prompt"},
		{CaseID: uuid.New(), Agent: "grant_writer", Prompt: "other case"},
		{CaseID: caseID, Agent: "negotiator", Prompt: "second prompt"},
	}
	for _, entry := range entries {
		if err := archive.LogAgentRequest(context.Background(), entry); err != nil {
			t.Fatalf("LogAgentRequest: %v", err)
		}
	}

	got, err := archive.ListAgentRequests(context.Background(), caseID)
	if err != nil {
		t.Fatalf("ListAgentRequests: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Agent != "policy_advisor" || got[1].Agent != "negotiator" {
		t.Errorf("unexpected agents: %s, %s", got[0].Agent, got[1].Agent)
	}
	for _, entry := range got {
		if entry.CreatedAt.IsZero() {
			t.Error("expected created_at to be set")
		}
	}
}

// TestSummarizeCase проверяет проекцию кейса в краткое описание.
func TestSummarizeCase(t *testing.T) {
	record := sampleRecord(uuid.New(), time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	summary := SummarizeCase(record)

	if summary.ID != record.ID {
		t.Errorf("id = %s, want %s", summary.ID, record.ID)
	}
	if summary.VendorName != "State University" || summary.InvoiceID != "INV-2024-001234" {
		t.Errorf("unexpected bill fields: %s, %s", summary.VendorName, summary.InvoiceID)
	}
	if summary.TotalAmountCents != 120000 || summary.DueDate != "2024-03-16" {
		t.Errorf("unexpected amount or due date: %d, %s", summary.TotalAmountCents, summary.DueDate)
	}
	if summary.RiskLevel != models.RiskCritical || summary.Status != models.CaseStatusCompleted {
		t.Errorf("unexpected risk or status: %s, %s", summary.RiskLevel, summary.Status)
	}
	if !summary.CreatedAt.Equal(record.CreatedAt) {
		t.Errorf("created_at = %s, want %s", summary.CreatedAt, record.CreatedAt)
	}
}
