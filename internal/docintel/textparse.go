package docintel

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"example.com/scholarshield/backend/internal/models"
)

var (
	amountPattern  = regexp.MustCompile(`(?i)(?:total|amount|balance)(?:\s+due)?\s*:?\s*\$?\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	dueDatePattern = regexp.MustCompile(`(?i)(?:due|payment)\s+date\s*:?\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4}|\d{4}-\d{2}-\d{2}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	vendorPattern  = regexp.MustCompile(`(?im)^\s*([^\n]*\b(?:university|college|institute)\b[^\n]*)$`)
	invoicePattern = regexp.MustCompile(`(?i)(?:invoice|account)\s*(?:number|no\.?|#)?\s*:\s*([A-Z0-9][A-Z0-9-]{3,})`)
)

var dateLayouts = []string{
	dateLayout,
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// fillFromText дозаполняет пустые поля счета по распознанному тексту документа.
func fillFromText(content string, bill *models.BillData) {
	if bill.TotalAmountCents <= 0 {
		if match := amountPattern.FindStringSubmatch(content); match != nil {
			bill.TotalAmountCents = parseAmountCents(match[1])
		}
	}

	if bill.DueDate == "" {
		if match := dueDatePattern.FindStringSubmatch(content); match != nil {
			if normalized, ok := normalizeDate(match[1]); ok {
				bill.DueDate = normalized
			}
		}
	}

	if bill.VendorName == "" {
		if match := vendorPattern.FindStringSubmatch(content); match != nil {
			bill.VendorName = strings.TrimSpace(match[1])
		}
	}

	if bill.InvoiceID == "" {
		if match := invoicePattern.FindStringSubmatch(content); match != nil {
			bill.InvoiceID = strings.TrimSpace(match[1])
		}
	}
}

func parseAmountCents(value string) int64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return 0
	}

	return int64(math.Round(amount * 100))
}

func normalizeDate(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format(dateLayout), true
		}
	}

	return "", false
}
