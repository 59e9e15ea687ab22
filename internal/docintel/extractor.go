package docintel

import (
	"bytes"
	"context"

	"example.com/scholarshield/backend/internal/models"
)

const dateLayout = "2006-01-02"

var pdfMagic = []byte("%PDF")

type Extractor interface {
	AnalyzeBill(ctx context.Context, doc []byte) (models.BillData, error)
}

// TextReader извлекает сплошной текст документа без разбора полей.
type TextReader interface {
	ReadText(ctx context.Context, doc []byte) (string, error)
}

// IsPDF проверяет сигнатуру PDF в начале файла.
func IsPDF(doc []byte) bool {
	return bytes.HasPrefix(doc, pdfMagic)
}
