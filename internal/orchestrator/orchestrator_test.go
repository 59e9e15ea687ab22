package orchestrator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/scholarshield/backend/internal/agents"
	"example.com/scholarshield/backend/internal/models"
	"example.com/scholarshield/backend/internal/search"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeExtractor struct {
	bill   models.BillData
	err    error
	called bool
}

func (f *fakeExtractor) AnalyzeBill(ctx context.Context, doc []byte) (models.BillData, error) {
	f.called = true
	if f.err != nil {
		return models.BillData{}, f.err
	}
	return f.bill, nil
}

type failingSearcher struct{}

func (failingSearcher) Search(ctx context.Context, query, index string, top int) ([]models.PolicySnippet, error) {
	return nil, errors.New("search endpoint unreachable")
}

type emptySearcher struct{}

func (emptySearcher) Search(ctx context.Context, query, index string, top int) ([]models.PolicySnippet, error) {
	return nil, nil
}

type failingAdvisor struct{}

func (failingAdvisor) Advise(ctx context.Context, snippets []models.PolicySnippet, query string) (models.PolicyAdvice, string, []byte, error) {
	return models.PolicyAdvice{}, "advice prompt", nil, errors.New("model overloaded")
}

type failingNegotiator struct{}

func (failingNegotiator) Draft(ctx context.Context, bill models.BillData, advice models.PolicyAdvice) (string, string, []byte, error) {
	return "", "email prompt", nil, errors.New("model overloaded")
}

type failingGrantWriter struct{}

func (failingGrantWriter) Write(ctx context.Context, profile models.StudentProfile, requirements, policyContext string) (string, string, []byte, error) {
	return "", "grant prompt", nil, errors.New("model overloaded")
}

type failingExplainer struct{}

func (failingExplainer) Explain(ctx context.Context, riskSummary, language string) (models.ParentExplanation, string, []byte, error) {
	return models.ParentExplanation{}, "explain prompt", nil, errors.New("model overloaded")
}

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) Notify(caseID uuid.UUID, step Step, status StepStatus, err error) {
	r.events = append(r.events, fmt.Sprintf("%s:%s", step, status))
}

type recordingRequests struct {
	entries []models.AgentRequest
}

func (r *recordingRequests) LogAgentRequest(ctx context.Context, entry models.AgentRequest) error {
	r.entries = append(r.entries, entry)
	return nil
}

func criticalBill() models.BillData {
	return models.BillData{
		TotalAmountCents: 120000,
		DueDate:          "2024-03-16",
		VendorName:       "State University",
		InvoiceID:        "INV-2024-001234",
	}
}

func pdfDocument() []byte {
	return []byte("%PDF-1.7\nstub tuition bill")
}

func testConfig(extractor *fakeExtractor) Config {
	memory := search.NewMemory()
	memory.SeedDefaultPolicies("university-handbook")

	return Config{
		Extractor:    extractor,
		Searcher:     memory,
		Advisor:      agents.NewStubAdvisor(),
		Negotiator:   agents.NewStubNegotiator(),
		GrantWriter:  agents.NewStubGrantWriter(),
		Explainer:    agents.NewStubExplainer(),
		DefaultIndex: "university-handbook",
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:          func() time.Time { return fixedNow },
	}
}

// TestAssessCriticalCase проверяет полный конвейер для критичного счета.
func TestAssessCriticalCase(t *testing.T) {
	o := New(testConfig(&fakeExtractor{bill: criticalBill()}))

	got, err := o.Assess(context.Background(), AssessInput{CaseID: uuid.New(), Document: pdfDocument()})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if got.RiskLevel != models.RiskCritical {
		t.Errorf("risk level = %s, want %s", got.RiskLevel, models.RiskCritical)
	}
	if got.Status != models.CaseStatusCompleted {
		t.Errorf("status = %s, want %s", got.Status, models.CaseStatusCompleted)
	}
	if got.PolicyFindings == nil || got.PolicyFindings.Advice == nil {
		t.Fatal("expected policy findings with advice")
	}

	cited := false
	for _, c := range got.PolicyFindings.Advice.Citations {
		if strings.Contains(c, "Section 4.2") {
			cited = true
		}
	}
	if !cited {
		t.Errorf("citations %v do not reference Section 4.2", got.PolicyFindings.Advice.Citations)
	}

	if !strings.Contains(got.NegotiationEmail, "Request for Tuition Payment Extension") {
		t.Errorf("unexpected negotiation email: %q", got.NegotiationEmail)
	}
	if len(got.RecommendedActions) != 3 {
		t.Fatalf("got %d recommended actions, want 3", len(got.RecommendedActions))
	}
	if got.RecommendedActions[0].Action != "Request Extension" || got.RecommendedActions[0].Priority != models.PriorityHigh {
		t.Errorf("first action = %+v", got.RecommendedActions[0])
	}
	if got.RecommendedActions[1].Action != "Apply for Emergency Grant" || got.RecommendedActions[1].Priority != models.PriorityUrgent {
		t.Errorf("second action = %+v", got.RecommendedActions[1])
	}
	if got.RecommendedActions[2].Action != got.PolicyFindings.Advice.ActionableStep {
		t.Errorf("third action = %q, want actionable step from advice", got.RecommendedActions[2].Action)
	}
}

// TestAssessSafeBill проверяет, что поиск политик выполняется и для безопасных счетов.
func TestAssessSafeBill(t *testing.T) {
	extractor := &fakeExtractor{bill: models.BillData{
		TotalAmountCents: 20000,
		DueDate:          "2024-04-20",
		VendorName:       "State University",
		InvoiceID:        "INV-7",
	}}
	o := New(testConfig(extractor))

	got, err := o.Assess(context.Background(), AssessInput{CaseID: uuid.New(), Document: pdfDocument()})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if got.RiskLevel != models.RiskSafe {
		t.Fatalf("risk level = %s, want %s", got.RiskLevel, models.RiskSafe)
	}
	if got.PolicyFindings == nil {
		t.Fatal("expected policy findings for a safe bill")
	}
	if got.NegotiationEmail != "" {
		t.Errorf("unexpected negotiation email for safe bill: %q", got.NegotiationEmail)
	}
	if len(got.RecommendedActions) != 2 {
		t.Fatalf("got %d recommended actions, want 2", len(got.RecommendedActions))
	}
	if got.RecommendedActions[0].Action != "Monitor Payment Due Date" || got.RecommendedActions[0].Priority != models.PriorityLow {
		t.Errorf("first action = %+v", got.RecommendedActions[0])
	}
	if got.Status != models.CaseStatusCompleted {
		t.Errorf("status = %s, want %s", got.Status, models.CaseStatusCompleted)
	}
}

// TestAssessExtractionFailure проверяет фатальный сбой извлечения.
func TestAssessExtractionFailure(t *testing.T) {
	o := New(testConfig(&fakeExtractor{err: errors.New("corrupt document")}))

	got, err := o.Assess(context.Background(), AssessInput{CaseID: uuid.New(), Document: pdfDocument()})
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
	if !reflect.DeepEqual(got, models.CaseAssessment{}) {
		t.Errorf("expected zero assessment on extraction failure, got %+v", got)
	}
}

// TestAssessSearchFailureDegrades проверяет мягкий сбой поиска политик.
func TestAssessSearchFailureDegrades(t *testing.T) {
	cfg := testConfig(&fakeExtractor{bill: criticalBill()})
	cfg.Searcher = failingSearcher{}
	o := New(cfg)

	got, err := o.Assess(context.Background(), AssessInput{CaseID: uuid.New(), Document: pdfDocument()})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if got.PolicyFindings != nil {
		t.Errorf("expected absent policy findings, got %+v", got.PolicyFindings)
	}
	if got.Status != models.CaseStatusCompletedPartial {
		t.Errorf("status = %s, want %s", got.Status, models.CaseStatusCompletedPartial)
	}
	if got.NegotiationEmail != "" {
		t.Errorf("unexpected negotiation email without findings: %q", got.NegotiationEmail)
	}
	if len(got.RecommendedActions) != 2 {
		t.Fatalf("got %d recommended actions, want 2 derived from risk level", len(got.RecommendedActions))
	}
	if got.RecommendedActions[0].Action != "Request Extension" {
		t.Errorf("first action = %q", got.RecommendedActions[0].Action)
	}
}

// TestAssessEmptySearchResults проверяет, что пустая выдача не считается сбоем.
func TestAssessEmptySearchResults(t *testing.T) {
	cfg := testConfig(&fakeExtractor{bill: criticalBill()})
	cfg.Searcher = emptySearcher{}
	o := New(cfg)

	got, err := o.Assess(context.Background(), AssessInput{CaseID: uuid.New(), Document: pdfDocument()})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if got.PolicyFindings != nil {
		t.Errorf("expected absent policy findings, got %+v", got.PolicyFindings)
	}
	if got.Status != models.CaseStatusCompleted {
		t.Errorf("status = %s, want %s", got.Status, models.CaseStatusCompleted)
	}
}

// TestAssessAdviceFailureKeepsResults проверяет, что сбой советника сохраняет найденные фрагменты.
func TestAssessAdviceFailureKeepsResults(t *testing.T) {
	cfg := testConfig(&fakeExtractor{bill: criticalBill()})
	cfg.Advisor = failingAdvisor{}
	o := New(cfg)

	got, err := o.Assess(context.Background(), AssessInput{CaseID: uuid.New(), Document: pdfDocument()})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if got.PolicyFindings == nil {
		t.Fatal("expected policy findings with search results")
	}
	if got.PolicyFindings.Advice != nil {
		t.Errorf("expected absent advice, got %+v", got.PolicyFindings.Advice)
	}
	if len(got.PolicyFindings.SearchResults) != 3 {
		t.Errorf("got %d search results, want 3", len(got.PolicyFindings.SearchResults))
	}
	if got.Status != models.CaseStatusCompletedPartial {
		t.Errorf("status = %s, want %s", got.Status, models.CaseStatusCompletedPartial)
	}
	if got.NegotiationEmail != "" {
		t.Errorf("unexpected negotiation email without advice: %q", got.NegotiationEmail)
	}
	if len(got.RecommendedActions) != 2 {
		t.Errorf("got %d recommended actions, want 2", len(got.RecommendedActions))
	}
}

// TestAssessNegotiationFailureDegrades проверяет мягкий сбой черновика письма.
func TestAssessNegotiationFailureDegrades(t *testing.T) {
	cfg := testConfig(&fakeExtractor{bill: criticalBill()})
	cfg.Negotiator = failingNegotiator{}
	o := New(cfg)

	got, err := o.Assess(context.Background(), AssessInput{CaseID: uuid.New(), Document: pdfDocument()})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if got.NegotiationEmail != "" {
		t.Errorf("expected empty negotiation email, got %q", got.NegotiationEmail)
	}
	if got.Status != models.CaseStatusCompletedPartial {
		t.Errorf("status = %s, want %s", got.Status, models.CaseStatusCompletedPartial)
	}
	if got.PolicyFindings == nil || got.PolicyFindings.Advice == nil {
		t.Fatal("expected policy findings with advice to survive email failure")
	}
}

// TestAssessValidation проверяет отклонение входа до обращения к внешним сервисам.
func TestAssessValidation(t *testing.T) {
	cases := []struct {
		name  string
		input AssessInput
	}{
		{"empty document", AssessInput{CaseID: uuid.New()}},
		{"not a pdf", AssessInput{CaseID: uuid.New(), Document: []byte("plain text bill")}},
		{"bad index name", AssessInput{CaseID: uuid.New(), Document: pdfDocument(), Index: "Bad_Name"}},
	}
	for _, tc := range cases {
		extractor := &fakeExtractor{bill: criticalBill()}
		o := New(testConfig(extractor))

		_, err := o.Assess(context.Background(), tc.input)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
		}
		if extractor.called {
			t.Errorf("%s: extractor was called before validation", tc.name)
		}
	}
}

// TestAssessIdempotent проверяет, что повторная оценка дает идентичный результат.
func TestAssessIdempotent(t *testing.T) {
	o := New(testConfig(&fakeExtractor{bill: criticalBill()}))
	input := AssessInput{CaseID: uuid.New(), Document: pdfDocument()}

	first, err := o.Assess(context.Background(), input)
	if err != nil {
		t.Fatalf("first Assess: %v", err)
	}
	second, err := o.Assess(context.Background(), input)
	if err != nil {
		t.Fatalf("second Assess: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("assessments differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

// TestAssessObserverOrder проверяет порядок уведомлений о ходе конвейера.
func TestAssessObserverOrder(t *testing.T) {
	obs := &recordingObserver{}
	cfg := testConfig(&fakeExtractor{bill: criticalBill()})
	cfg.Observer = obs
	o := New(cfg)

	if _, err := o.Assess(context.Background(), AssessInput{CaseID: uuid.New(), Document: pdfDocument()}); err != nil {
		t.Fatalf("Assess: %v", err)
	}

	want := []string{
		"extract:started", "extract:completed",
		"risk:started", "risk:completed",
		"policy_search:started", "policy_search:completed",
		"advice:started", "advice:completed",
		"negotiation_email:started", "negotiation_email:completed",
	}
	if !reflect.DeepEqual(obs.events, want) {
		t.Errorf("events = %v, want %v", obs.events, want)
	}
}

// TestAssessLogsAgentRequests проверяет журналирование обращений к агентам.
func TestAssessLogsAgentRequests(t *testing.T) {
	reqs := &recordingRequests{}
	cfg := testConfig(&fakeExtractor{bill: criticalBill()})
	cfg.Requests = reqs
	o := New(cfg)

	caseID := uuid.New()
	if _, err := o.Assess(context.Background(), AssessInput{CaseID: caseID, Document: pdfDocument()}); err != nil {
		t.Fatalf("Assess: %v", err)
	}

	if len(reqs.entries) != 2 {
		t.Fatalf("got %d logged requests, want 2", len(reqs.entries))
	}
	if reqs.entries[0].Agent != "policy_advisor" || reqs.entries[1].Agent != "negotiator" {
		t.Errorf("logged agents = %q, %q", reqs.entries[0].Agent, reqs.entries[1].Agent)
	}
	for _, entry := range reqs.entries {
		if entry.CaseID != caseID {
			t.Errorf("entry case id = %s, want %s", entry.CaseID, caseID)
		}
	}
}

// TestWriteGrant проверяет генерацию эссе по профилю студента.
func TestWriteGrant(t *testing.T) {
	o := New(testConfig(&fakeExtractor{}))

	essay, err := o.WriteGrant(context.Background(), models.StudentProfile{Major: "Biology", GPA: "3.8"}, "Describe your financial need", "")
	if err != nil {
		t.Fatalf("WriteGrant: %v", err)
	}
	if !strings.Contains(essay, "Biology") {
		t.Errorf("essay does not mention the major: %q", essay)
	}
}

// TestWriteGrantValidation проверяет обязательность требований гранта.
func TestWriteGrantValidation(t *testing.T) {
	o := New(testConfig(&fakeExtractor{}))

	if _, err := o.WriteGrant(context.Background(), models.StudentProfile{}, "   ", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

// TestWriteGrantGenerationFailure проверяет, что сбой генерации возвращается целиком.
func TestWriteGrantGenerationFailure(t *testing.T) {
	cfg := testConfig(&fakeExtractor{})
	cfg.GrantWriter = failingGrantWriter{}
	o := New(cfg)

	if _, err := o.WriteGrant(context.Background(), models.StudentProfile{}, "Describe your financial need", ""); !errors.Is(err, ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}
}

// TestExplainToParent проверяет перевод и озвучку сводки риска.
func TestExplainToParent(t *testing.T) {
	o := New(testConfig(&fakeExtractor{}))

	got, err := o.ExplainToParent(context.Background(), "Risk CRITICAL. $1,200.00 due on 2024-03-16.", "es")
	if err != nil {
		t.Fatalf("ExplainToParent: %v", err)
	}
	if got.Language != "es" {
		t.Errorf("language = %q, want es", got.Language)
	}
	if got.Voice != "es-MX-DaliaNeural" {
		t.Errorf("voice = %q", got.Voice)
	}
	if got.TranslatedText == got.OriginalSummary {
		t.Errorf("expected translated text to differ from original: %q", got.TranslatedText)
	}
	if _, err := base64.StdEncoding.DecodeString(got.AudioBase64); err != nil {
		t.Errorf("audio is not valid base64: %v", err)
	}
}

// TestExplainToParentValidation проверяет отклонение неподдерживаемого языка.
func TestExplainToParentValidation(t *testing.T) {
	o := New(testConfig(&fakeExtractor{}))

	if _, err := o.ExplainToParent(context.Background(), "Risk SAFE.", "fr"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for unsupported language", err)
	}
	if _, err := o.ExplainToParent(context.Background(), "   ", "es"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for empty summary", err)
	}
}

// TestExplainToParentGenerationFailure проверяет, что сбой объяснителя возвращается целиком.
func TestExplainToParentGenerationFailure(t *testing.T) {
	cfg := testConfig(&fakeExtractor{})
	cfg.Explainer = failingExplainer{}
	o := New(cfg)

	if _, err := o.ExplainToParent(context.Background(), "Risk SAFE.", "es"); !errors.Is(err, ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}
}
