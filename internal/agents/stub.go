package agents

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"example.com/scholarshield/backend/internal/models"
	"example.com/scholarshield/backend/internal/translate"
)

const (
	stubUrgentSummary = "Mom, Dad, we have a school bill due soon, but I found a plan to extend the deadline so we can handle it safely."
	stubCalmSummary   = "We have a school bill, but we have time and options to handle it."
)

// StubAdvisor возвращает заготовленные рекомендации без обращения к модели.
type StubAdvisor struct{}

// NewStubAdvisor создает советника-заглушку.
func NewStubAdvisor() *StubAdvisor {
	return &StubAdvisor{}
}

// Advise возвращает рекомендацию о продлении срока оплаты по Bylaw 4.2.
func (a *StubAdvisor) Advise(ctx context.Context, snippets []models.PolicySnippet, query string) (models.PolicyAdvice, string, []byte, error) {
	if len(snippets) == 0 {
		return models.PolicyAdvice{
			Summary:        "Unable to find specific policy information. Contact the Financial Aid Office for assistance.",
			Citations:      []string{},
			ActionableStep: "Contact the Financial Aid Office directly",
			Confidence:     models.ConfidenceLow,
		}, "", nil, nil
	}

	return models.PolicyAdvice{
		Summary:        "Students facing financial hardship may request an extension of up to 30 days for tuition payment deadlines by submitting a written request to the Bursar's Office with documentation of hardship, per Bylaw 4.2.",
		Citations:      snippetSources(snippets),
		ActionableStep: "Submit a written request to the Bursar's Office citing Bylaw 4.2 (Hardship Extension) with documentation of financial hardship",
		Confidence:     models.ConfidenceHigh,
	}, "", nil, nil
}

// StubNegotiator составляет шаблонное письмо об отсрочке платежа.
type StubNegotiator struct{}

// NewStubNegotiator создает переговорщика-заглушку.
func NewStubNegotiator() *StubNegotiator {
	return &StubNegotiator{}
}

// Draft возвращает шаблонное письмо с данными счета и первой цитатой из рекомендаций.
func (n *StubNegotiator) Draft(ctx context.Context, bill models.BillData, advice models.PolicyAdvice) (string, string, []byte, error) {
	invoiceID := bill.InvoiceID
	if invoiceID == "" {
		invoiceID = "INV-2024-001234"
	}
	citation := "University Handbook Section 4.2"
	if len(advice.Citations) > 0 {
		citation = advice.Citations[0]
	}

	email := fmt.Sprintf(`Subject: Request for Tuition Payment Extension - Invoice %s

Dear Bursar's Office,

I am writing to respectfully request an extension for tuition payment for Invoice %s in the amount of %s, which is currently due on %s.

Per %s regarding hardship extensions, I am requesting a payment extension due to unforeseen financial circumstances. I am committed to fulfilling this financial obligation and propose a new payment date of %s.

I understand the importance of meeting financial commitments to the university and assure you of my intent to submit payment by the proposed date. I am happy to provide any additional documentation if required.

Thank you for your understanding and consideration of this request.

Respectfully,
[Student Name]
[Student ID]`,
		invoiceID, invoiceID, moneyUSD(bill.TotalAmountCents), bill.DueDate, citation, proposedPaymentDate(bill.DueDate))

	return email, "", nil, nil
}

// StubGrantWriter возвращает шаблонное эссе по профилю студента.
type StubGrantWriter struct{}

// NewStubGrantWriter создает автора эссе-заглушку.
func NewStubGrantWriter() *StubGrantWriter {
	return &StubGrantWriter{}
}

// Write подставляет профиль студента в заготовленный текст эссе.
func (w *StubGrantWriter) Write(ctx context.Context, profile models.StudentProfile, requirements, policyContext string) (string, string, []byte, error) {
	major := profile.Major
	if strings.TrimSpace(major) == "" {
		major = "Computer Science"
	}
	hardship := profile.HardshipReason
	if strings.TrimSpace(hardship) == "" {
		hardship = "Family financial difficulties"
	}
	gpa := profile.GPA
	if strings.TrimSpace(gpa) == "" {
		gpa = "3.5"
	}

	essay := fmt.Sprintf(`As a %s student with a GPA of %s, I am writing to respectfully request consideration for emergency financial assistance. My academic journey has been marked by determination and resilience, but I now face significant financial barriers that threaten my ability to continue my education.

%s has created an urgent situation that requires immediate attention. Despite these challenges, I have maintained my academic performance and remain committed to my educational goals. I understand the value of education as a pathway to a better future, not only for myself but for my family.

The requested grant would provide crucial support during this difficult period, allowing me to focus on my studies without the constant stress of financial insecurity. I am grateful for any consideration and remain committed to excelling academically and contributing meaningfully to my community upon graduation.

I respectfully request your assistance in helping me overcome these obstacles and continue my pursuit of higher education.`,
		major, gpa, hardship)

	return essay, "", nil, nil
}

// StubExplainer возвращает заготовленное объяснение для родителей.
type StubExplainer struct {
	translator translate.Translator
	speech     translate.Synthesizer
}

// NewStubExplainer создает объяснителя-заглушку с встроенными переводами.
func NewStubExplainer() *StubExplainer {
	return &StubExplainer{
		translator: translate.NewStubTranslator(),
		speech:     translate.NewStubSpeech(),
	}
}

// Explain подбирает заготовленный текст по уровню риска и языку.
func (e *StubExplainer) Explain(ctx context.Context, riskSummary, language string) (models.ParentExplanation, string, []byte, error) {
	summary := stubCalmSummary
	if strings.Contains(strings.ToUpper(riskSummary), "CRITICAL") {
		summary = stubUrgentSummary
	}

	translated := summary
	if language != "en" {
		var err error
		translated, err = e.translator.Translate(ctx, riskSummary, language)
		if err != nil {
			return models.ParentExplanation{}, "", nil, err
		}
	}

	voice := translate.VoiceFor(language)
	audio, err := e.speech.Synthesize(ctx, translated, voice)
	if err != nil {
		return models.ParentExplanation{}, "", nil, err
	}

	return models.ParentExplanation{
		OriginalSummary: summary,
		TranslatedText:  translated,
		Language:        language,
		Voice:           voice,
		AudioBase64:     base64.StdEncoding.EncodeToString(audio),
	}, "", nil, nil
}
