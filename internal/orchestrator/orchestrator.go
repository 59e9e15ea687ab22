package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/scholarshield/backend/internal/agents"
	"example.com/scholarshield/backend/internal/docintel"
	"example.com/scholarshield/backend/internal/models"
	"example.com/scholarshield/backend/internal/risk"
	"example.com/scholarshield/backend/internal/search"
	"example.com/scholarshield/backend/internal/translate"
)

const defaultSearchTop = 3

// Step обозначает этап конвейера оценки счета.
type Step string

// StepStatus обозначает состояние этапа.
type StepStatus string

const (
	StepExtract          Step = "extract"
	StepRisk             Step = "risk"
	StepPolicySearch     Step = "policy_search"
	StepAdvice           Step = "advice"
	StepNegotiationEmail Step = "negotiation_email"

	StepStarted   StepStatus = "started"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// StepObserver получает уведомления о ходе конвейера, не влияя на него.
type StepObserver interface {
	Notify(caseID uuid.UUID, step Step, status StepStatus, err error)
}

// RequestLogger сохраняет обращения к агентам для аудита.
type RequestLogger interface {
	LogAgentRequest(ctx context.Context, entry models.AgentRequest) error
}

// AssessInput описывает один загруженный счет.
type AssessInput struct {
	CaseID   uuid.UUID
	Document []byte
	Index    string
}

// Config собирает зависимости конвейера оценки.
type Config struct {
	Extractor   docintel.Extractor
	Searcher    search.Searcher
	Advisor     agents.Advisor
	Negotiator  agents.Negotiator
	GrantWriter agents.GrantWriter
	Explainer   agents.Explainer

	Observer StepObserver
	Requests RequestLogger

	DefaultIndex string
	SearchTop    int
	Logger       *slog.Logger
	Now          func() time.Time
}

// Orchestrator координирует извлечение, оценку риска и агентов.
type Orchestrator struct {
	extractor   docintel.Extractor
	searcher    search.Searcher
	advisor     agents.Advisor
	negotiator  agents.Negotiator
	grantWriter agents.GrantWriter
	explainer   agents.Explainer

	observer StepObserver
	requests RequestLogger

	defaultIndex string
	searchTop    int
	logger       *slog.Logger
	now          func() time.Time
}

// New создает оркестратор с заполненными зависимостями.
func New(cfg Config) *Orchestrator {
	if cfg.SearchTop <= 0 {
		cfg.SearchTop = defaultSearchTop
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Orchestrator{
		extractor:    cfg.Extractor,
		searcher:     cfg.Searcher,
		advisor:      cfg.Advisor,
		negotiator:   cfg.Negotiator,
		grantWriter:  cfg.GrantWriter,
		explainer:    cfg.Explainer,
		observer:     cfg.Observer,
		requests:     cfg.Requests,
		defaultIndex: cfg.DefaultIndex,
		searchTop:    cfg.SearchTop,
		logger:       cfg.Logger,
		now:          cfg.Now,
	}
}

// Assess прогоняет счет через весь конвейер и собирает итоговую оценку.
func (o *Orchestrator) Assess(ctx context.Context, input AssessInput) (models.CaseAssessment, error) {
	if err := validateInput(input); err != nil {
		return models.CaseAssessment{}, err
	}

	o.notify(input.CaseID, StepExtract, StepStarted, nil)
	bill, err := o.extractor.AnalyzeBill(ctx, input.Document)
	if err != nil {
		o.notify(input.CaseID, StepExtract, StepFailed, err)
		return models.CaseAssessment{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	o.notify(input.CaseID, StepExtract, StepCompleted, nil)

	o.notify(input.CaseID, StepRisk, StepStarted, nil)
	level := risk.ClassifyBill(bill, o.now())
	o.notify(input.CaseID, StepRisk, StepCompleted, nil)

	findings, degraded := o.searchPolicies(ctx, input.CaseID, input.Index, bill)

	var advice *models.PolicyAdvice
	if findings != nil {
		advice = findings.Advice
	}

	assessment := models.CaseAssessment{
		Bill:               bill,
		RiskLevel:          level,
		PolicyFindings:     findings,
		RecommendedActions: recommendedActions(level, advice),
	}

	if level == models.RiskCritical && advice != nil {
		o.notify(input.CaseID, StepNegotiationEmail, StepStarted, nil)
		email, prompt, raw, err := o.negotiator.Draft(ctx, bill, *advice)
		o.logAgent(ctx, input.CaseID, "negotiator", prompt, raw, err)
		if err != nil {
			o.logger.Warn("negotiation email draft failed", slog.String("case_id", input.CaseID.String()), slog.String("error", err.Error()))
			o.notify(input.CaseID, StepNegotiationEmail, StepFailed, err)
			degraded = true
		} else {
			assessment.NegotiationEmail = email
			o.notify(input.CaseID, StepNegotiationEmail, StepCompleted, nil)
		}
	}

	assessment.Status = models.CaseStatusCompleted
	if degraded {
		assessment.Status = models.CaseStatusCompletedPartial
	}
	return assessment, nil
}

// WriteGrant генерирует черновик грантового эссе.
func (o *Orchestrator) WriteGrant(ctx context.Context, profile models.StudentProfile, requirements, policyContext string) (string, error) {
	if strings.TrimSpace(requirements) == "" {
		return "", fmt.Errorf("%w: grant requirements are required", ErrValidation)
	}
	essay, prompt, raw, err := o.grantWriter.Write(ctx, profile, requirements, policyContext)
	o.logAgent(ctx, uuid.Nil, "grant_writer", prompt, raw, err)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return essay, nil
}

// ExplainToParent переводит сводку риска и синтезирует озвучку.
func (o *Orchestrator) ExplainToParent(ctx context.Context, riskSummary, language string) (models.ParentExplanation, error) {
	if strings.TrimSpace(riskSummary) == "" {
		return models.ParentExplanation{}, fmt.Errorf("%w: risk summary is required", ErrValidation)
	}
	if !translate.Supported(language) {
		return models.ParentExplanation{}, fmt.Errorf("%w: unsupported language %q", ErrValidation, language)
	}
	explanation, prompt, raw, err := o.explainer.Explain(ctx, riskSummary, language)
	o.logAgent(ctx, uuid.Nil, "parent_explainer", prompt, raw, err)
	if err != nil {
		return models.ParentExplanation{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return explanation, nil
}

// searchPolicies выполняет поиск по справочнику и готовит совет.
// Ошибки здесь мягкие: кейс продолжается с пометкой degraded.
func (o *Orchestrator) searchPolicies(ctx context.Context, caseID uuid.UUID, index string, bill models.BillData) (*models.PolicyFindings, bool) {
	if index == "" {
		index = o.defaultIndex
	}
	query := search.BuildQuery(bill)

	o.notify(caseID, StepPolicySearch, StepStarted, nil)
	snippets, err := o.searcher.Search(ctx, query, index, o.searchTop)
	if err != nil {
		o.logger.Warn("policy search unavailable", slog.String("case_id", caseID.String()), slog.String("index", index), slog.String("error", err.Error()))
		o.notify(caseID, StepPolicySearch, StepFailed, err)
		return nil, true
	}
	o.notify(caseID, StepPolicySearch, StepCompleted, nil)
	if len(snippets) == 0 {
		return nil, false
	}

	findings := &models.PolicyFindings{SearchResults: snippets}

	o.notify(caseID, StepAdvice, StepStarted, nil)
	advice, prompt, raw, err := o.advisor.Advise(ctx, snippets, query)
	o.logAgent(ctx, caseID, "policy_advisor", prompt, raw, err)
	if err != nil {
		o.logger.Warn("policy advice generation failed", slog.String("case_id", caseID.String()), slog.String("error", err.Error()))
		o.notify(caseID, StepAdvice, StepFailed, err)
		return findings, true
	}
	o.notify(caseID, StepAdvice, StepCompleted, nil)
	findings.Advice = &advice
	return findings, false
}

func (o *Orchestrator) notify(caseID uuid.UUID, step Step, status StepStatus, err error) {
	if o.observer == nil {
		return
	}
	o.observer.Notify(caseID, step, status, err)
}

func (o *Orchestrator) logAgent(ctx context.Context, caseID uuid.UUID, agent, prompt string, raw []byte, err error) {
	if o.requests == nil {
		return
	}
	entry := models.AgentRequest{
		CaseID:   caseID,
		Agent:    agent,
		Prompt:   prompt,
		Response: string(raw),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	_ = o.requests.LogAgentRequest(ctx, entry)
}

func validateInput(input AssessInput) error {
	if len(input.Document) == 0 {
		return fmt.Errorf("%w: document is empty", ErrValidation)
	}
	if !docintel.IsPDF(input.Document) {
		return fmt.Errorf("%w: file does not appear to be a valid PDF", ErrValidation)
	}
	if input.Index != "" && !search.ValidIndexName(input.Index) {
		return fmt.Errorf("%w: invalid search index name %q", ErrValidation, input.Index)
	}
	return nil
}

func recommendedActions(level models.RiskLevel, advice *models.PolicyAdvice) []models.RecommendedAction {
	var actions []models.RecommendedAction
	switch level {
	case models.RiskWarning:
		actions = append(actions, requestExtensionAction())
	case models.RiskCritical:
		actions = append(actions, requestExtensionAction(), models.RecommendedAction{
			Action:      "Apply for Emergency Grant",
			Description: "Emergency grants of $200-$1000 are awarded within 48 hours of application",
			Priority:    models.PriorityUrgent,
		})
	default:
		actions = append(actions, models.RecommendedAction{
			Action:      "Monitor Payment Due Date",
			Description: "Ensure payment is submitted before the due date",
			Priority:    models.PriorityLow,
		})
	}
	if advice != nil && strings.TrimSpace(advice.ActionableStep) != "" {
		actions = append(actions, models.RecommendedAction{
			Action:      advice.ActionableStep,
			Description: advice.Summary,
			Priority:    models.PriorityHigh,
		})
	}
	return actions
}

func requestExtensionAction() models.RecommendedAction {
	return models.RecommendedAction{
		Action:      "Request Extension",
		Description: "Submit a written request to the Bursar's Office",
		Priority:    models.PriorityHigh,
	}
}
