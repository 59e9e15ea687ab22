package handlers

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/scholarshield/backend/internal/models"
	"example.com/scholarshield/backend/internal/repository"
)

// TestParseLimit проверяет разбор параметра limit.
func TestParseLimit(t *testing.T) {
	limit, err := parseLimit("")
	if err != nil {
		t.Fatalf("expected no error for empty limit, got %v", err)
	}
	if limit != 0 {
		t.Fatalf("expected zero limit for empty value, got %d", limit)
	}

	limit, err = parseLimit("25")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if limit != 25 {
		t.Fatalf("unexpected limit: %d", limit)
	}

	if _, err := parseLimit("abc"); err == nil {
		t.Fatal("expected error for non-numeric limit")
	}
	if _, err := parseLimit("0"); err == nil {
		t.Fatal("expected error for zero limit")
	}
	if _, err := parseLimit("-5"); err == nil {
		t.Fatal("expected error for negative limit")
	}
}

// TestWriteCasesCSV проверяет формат CSV-выгрузки кейсов.
func TestWriteCasesCSV(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	createdAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	summaries := []repository.CaseSummary{
		{
			ID:               id,
			VendorName:       "State University",
			InvoiceID:        "INV-2024-001234",
			TotalAmountCents: 120000,
			DueDate:          "2024-03-16",
			RiskLevel:        models.RiskCritical,
			Status:           models.CaseStatusCompleted,
			CreatedAt:        createdAt,
		},
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeCasesCSV(writer, summaries); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		t.Fatalf("expected no flush error, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one record, got %d lines", len(lines))
	}

	if lines[0] != "case_id,vendor_name,invoice_id,total_amount_cents,due_date,risk_level,status,created_at" {
		t.Fatalf("unexpected header: %s", lines[0])
	}

	record := lines[1]
	if !strings.Contains(record, id.String()) {
		t.Fatalf("expected case id in record: %s", record)
	}
	if !strings.Contains(record, "120000") {
		t.Fatalf("expected amount in record: %s", record)
	}
	if !strings.Contains(record, "CRITICAL") {
		t.Fatalf("expected risk level in record: %s", record)
	}
	if !strings.Contains(record, "2024-03-15T12:00:00Z") {
		t.Fatalf("expected RFC3339 timestamp in record: %s", record)
	}
}

// TestWriteCasesCSVEmpty проверяет выгрузку без кейсов.
func TestWriteCasesCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeCasesCSV(writer, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected header only, got %d lines", len(lines))
	}
}

// TestWriteActionsCSV проверяет выгрузку рекомендованных действий кейса.
func TestWriteActionsCSV(t *testing.T) {
	record := models.CaseRecord{
		ID: uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Assessment: models.CaseAssessment{
			Bill: models.BillData{
				VendorName: "State University",
				InvoiceID:  "INV-2024-001234",
			},
			RiskLevel: models.RiskCritical,
			RecommendedActions: []models.RecommendedAction{
				{Action: "Request Extension", Description: "Ask the Bursar's Office for a hardship extension.", Priority: models.PriorityHigh},
				{Action: "Apply for Emergency Grant", Description: "Submit an emergency grant application.", Priority: models.PriorityUrgent},
			},
		},
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeActionsCSV(writer, record); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		t.Fatalf("expected no flush error, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two actions, got %d lines", len(lines))
	}
	if lines[0] != "case_id,vendor_name,invoice_id,risk_level,action,description,priority" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Request Extension") || !strings.Contains(lines[1], "high") {
		t.Fatalf("unexpected first action row: %s", lines[1])
	}
	if !strings.Contains(lines[2], "Apply for Emergency Grant") || !strings.Contains(lines[2], "urgent") {
		t.Fatalf("unexpected second action row: %s", lines[2])
	}
}

// TestWriteRequestsCSV проверяет выгрузку журнала обращений к моделям.
func TestWriteRequestsCSV(t *testing.T) {
	createdAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	requests := []models.AgentRequest{
		{
			CaseID:    uuid.MustParse("11111111-2222-3333-4444-555555555555"),
			Agent:     "policy_advisor",
			Prompt:    "Financial situation: tuition bill of $1,200.00",
			Response:  `{"summary":"Bylaw 4.2 allows extensions."}`,
			CreatedAt: createdAt,
		},
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeRequestsCSV(writer, requests); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one request, got %d lines", len(lines))
	}
	if lines[0] != "case_id,agent,prompt,response,error,created_at" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "policy_advisor") {
		t.Fatalf("expected agent name in row: %s", lines[1])
	}
	if !strings.Contains(lines[1], "2024-03-15T12:00:00Z") {
		t.Fatalf("expected RFC3339 timestamp in row: %s", lines[1])
	}
}
