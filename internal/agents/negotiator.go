package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"example.com/scholarshield/backend/internal/llm"
	"example.com/scholarshield/backend/internal/models"
)

const negotiatorSystemPrompt = `You are a professional financial advocate representing FGLI (First-Generation, Low-Income) students.
Write a polite but firm email to the University Bursar requesting a payment extension.

Guidelines:
- Use formal, respectful tone
- Reference specific invoice details (Invoice ID, Amount)
- Quote specific bylaws and policy sections
- Propose a concrete payment date (2 weeks after current due date)
- Emphasize the student's commitment to payment
- Keep the email concise (2-3 paragraphs)
- End with a professional closing`

// LLMNegotiator составляет письмо в Bursar's Office через языковую модель.
type LLMNegotiator struct {
	client llm.Client
}

// NewLLMNegotiator создает переговорщика на основе языковой модели.
func NewLLMNegotiator(client llm.Client) *LLMNegotiator {
	return &LLMNegotiator{client: client}
}

// Draft просит модель написать письмо об отсрочке платежа по данным счета.
func (n *LLMNegotiator) Draft(ctx context.Context, bill models.BillData, advice models.PolicyAdvice) (string, string, []byte, error) {
	prompt := buildNegotiatorPrompt(bill, advice)
	messages := []llm.Message{
		{Role: "system", Content: negotiatorSystemPrompt},
		{Role: "user", Content: prompt},
	}

	content, raw, err := n.client.Chat(ctx, llm.ChatRequest{
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   600,
	})
	if err != nil {
		return "", prompt, raw, err
	}

	email := strings.TrimSpace(content)
	if email == "" {
		return "", prompt, raw, errors.New("negotiation email is empty")
	}
	return email, prompt, raw, nil
}

func buildNegotiatorPrompt(bill models.BillData, advice models.PolicyAdvice) string {
	invoiceID := bill.InvoiceID
	if invoiceID == "" {
		invoiceID = "N/A"
	}
	vendor := bill.VendorName
	if vendor == "" {
		vendor = "University"
	}
	citation := "Please refer to university hardship extension policies"
	if len(advice.Citations) > 0 {
		citation = advice.Citations[0]
	}
	proposed := proposedPaymentDate(bill.DueDate)

	return fmt.Sprintf(`Write an email to the Bursar's Office requesting a payment extension.

Invoice Details:
- Invoice ID: %s
- Amount: %s
- Vendor: %s
- Original Due Date: %s
- Proposed New Due Date: %s

University Policies Found:
%s

Policy Summary:
%s

Write a professional email that:
1. Clearly states the request for an extension
2. References the invoice ID and amount
3. Cites the specific university policies/bylaws
4. Proposes the new payment date (%s)
5. Assures the bursar of the student's intent to pay`,
		invoiceID, moneyUSD(bill.TotalAmountCents), vendor, bill.DueDate, proposed, citation, advice.Summary, proposed)
}
