package models

import (
	"time"

	"github.com/google/uuid"
)

type RiskLevel string

type CaseStatus string

type Confidence string

type ActionPriority string

const (
	RiskSafe     RiskLevel = "SAFE"
	RiskWarning  RiskLevel = "WARNING"
	RiskCritical RiskLevel = "CRITICAL"

	CaseStatusProcessing       CaseStatus = "processing"
	CaseStatusCompleted        CaseStatus = "completed"
	CaseStatusCompletedPartial CaseStatus = "completed_partial"
	CaseStatusError            CaseStatus = "error"

	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"

	PriorityLow    ActionPriority = "low"
	PriorityMedium ActionPriority = "medium"
	PriorityHigh   ActionPriority = "high"
	PriorityUrgent ActionPriority = "urgent"
)

type BillData struct {
	TotalAmountCents int64  `json:"total_amount_cents"`
	DueDate          string `json:"due_date"`
	VendorName       string `json:"vendor_name"`
	InvoiceID        string `json:"invoice_id"`
}

type PolicySnippet struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Section string  `json:"section,omitempty"`
	Page    string  `json:"page,omitempty"`
}

type PolicyAdvice struct {
	Summary        string     `json:"summary"`
	Citations      []string   `json:"citations"`
	ActionableStep string     `json:"actionable_step"`
	Confidence     Confidence `json:"confidence"`
}

type PolicyFindings struct {
	SearchResults []PolicySnippet `json:"search_results"`
	Advice        *PolicyAdvice   `json:"advice,omitempty"`
}

type RecommendedAction struct {
	Action      string         `json:"action"`
	Description string         `json:"description"`
	Priority    ActionPriority `json:"priority"`
}

type StudentProfile struct {
	Name           string `json:"name"`
	Major          string `json:"major"`
	Year           string `json:"year"`
	GPA            string `json:"gpa"`
	HardshipReason string `json:"hardship_reason"`
}

type CaseAssessment struct {
	Bill               BillData            `json:"bill_data"`
	RiskLevel          RiskLevel           `json:"risk_level"`
	PolicyFindings     *PolicyFindings     `json:"policy_findings,omitempty"`
	RecommendedActions []RecommendedAction `json:"recommended_actions"`
	NegotiationEmail   string              `json:"negotiation_email,omitempty"`
	Status             CaseStatus          `json:"status"`
}

type ParentExplanation struct {
	OriginalSummary string `json:"original_summary"`
	TranslatedText  string `json:"translated_text"`
	Language        string `json:"language"`
	Voice           string `json:"voice"`
	AudioBase64     string `json:"audio_base64"`
}

type CaseRecord struct {
	ID         uuid.UUID      `json:"id"`
	IndexName  string         `json:"index_name"`
	Assessment CaseAssessment `json:"assessment"`
	CreatedAt  time.Time      `json:"created_at"`
}

type AgentRequest struct {
	CaseID    uuid.UUID `json:"case_id"`
	Agent     string    `json:"agent"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
