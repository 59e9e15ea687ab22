package risk

import (
	"fmt"
	"strings"
	"time"

	"example.com/scholarshield/backend/internal/models"
)

const DateLayout = "2006-01-02"

const (
	criticalAmountCents = 100000
	warningAmountCents  = 50000
	criticalDueDays     = 3
	warningDueDays      = 7
)

// Classify определяет уровень риска по сумме счета и сроку оплаты.
func Classify(totalAmountCents int64, dueDate, now time.Time) models.RiskLevel {
	days := DaysUntilDue(dueDate, now)

	if totalAmountCents > criticalAmountCents && days <= criticalDueDays {
		return models.RiskCritical
	}
	if totalAmountCents > warningAmountCents && days <= warningDueDays {
		return models.RiskWarning
	}

	return models.RiskSafe
}

// ClassifyBill вычисляет риск распознанного счета, нечитаемая дата или нулевая сумма дают SAFE.
func ClassifyBill(bill models.BillData, now time.Time) models.RiskLevel {
	if bill.TotalAmountCents <= 0 {
		return models.RiskSafe
	}

	due, err := time.Parse(DateLayout, strings.TrimSpace(bill.DueDate))
	if err != nil {
		return models.RiskSafe
	}

	return Classify(bill.TotalAmountCents, due, now)
}

// Summary строит короткую сводку риска, которую переводят для родителей.
func Summary(bill models.BillData, level models.RiskLevel) string {
	due := strings.TrimSpace(bill.DueDate)
	if due == "" {
		due = "an unknown date"
	}
	return fmt.Sprintf("Risk %s. $%.2f due on %s.", level, float64(bill.TotalAmountCents)/100, due)
}

// DaysUntilDue возвращает число календарных дней до срока оплаты.
func DaysUntilDue(dueDate, now time.Time) int {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return int(due.Sub(today).Hours() / 24)
}
