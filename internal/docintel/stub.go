package docintel

import (
	"context"
	"time"

	"example.com/scholarshield/backend/internal/models"
)

// Stub возвращает фиксированный демонстрационный счет вместо вызова облачного API.
type Stub struct {
	now func() time.Time
}

// NewStub создает заглушку распознавания счетов.
func NewStub() *Stub {
	return &Stub{now: time.Now}
}

// AnalyzeBill возвращает демонстрационный счет со сроком оплаты завтра.
func (s *Stub) AnalyzeBill(_ context.Context, _ []byte) (models.BillData, error) {
	return models.BillData{
		TotalAmountCents: 120000,
		DueDate:          s.now().AddDate(0, 0, 1).Format(dateLayout),
		VendorName:       "State University",
		InvoiceID:        "INV-2024-001234",
	}, nil
}
