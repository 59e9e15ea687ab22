package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/scholarshield/backend/internal/docintel"
	"example.com/scholarshield/backend/internal/search"
)

type HandbookHandler struct {
	Indexer        search.Indexer
	TextReader     docintel.TextReader
	MaxUploadBytes int64
}

// NewHandbookHandler создает обработчик загрузки университетских справочников.
// TextReader может быть nil, тогда принимаются только текстовые файлы.
func NewHandbookHandler(indexer search.Indexer, reader docintel.TextReader, maxUploadBytes int) *HandbookHandler {
	return &HandbookHandler{
		Indexer:        indexer,
		TextReader:     reader,
		MaxUploadBytes: int64(maxUploadBytes),
	}
}

type HandbookResponse struct {
	Success       bool   `json:"success"`
	IndexName     string `json:"index_name"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

// Upload разбирает справочник на фрагменты и создает поисковый индекс.
func (h *HandbookHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	if h.MaxUploadBytes > 0 && fileHeader.Size > h.MaxUploadBytes {
		return badRequest(c, "file exceeds upload size limit")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return serverError(c)
	}
	defer src.Close()

	document, err := io.ReadAll(src)
	if err != nil {
		return serverError(c)
	}

	universityName := strings.TrimSpace(c.FormValue("university_name"))
	if universityName == "" {
		return badRequest(c, "university_name is required")
	}

	content := string(document)
	if docintel.IsPDF(document) {
		if h.TextReader == nil {
			return badRequest(c, "pdf handbooks require a document intelligence provider")
		}
		content, err = h.TextReader.ReadText(c.Request().Context(), document)
		if err != nil {
			slog.Error("handbook text extraction failed", slog.String("error", err.Error()))
			return badGateway(c, "failed to read handbook text")
		}
	}

	chunks := search.ParseHandbook(content, universityName)
	if len(chunks) == 0 {
		return badRequest(c, "handbook contains no readable content")
	}

	indexName := search.NewIndexName(universityName)
	if err := h.Indexer.CreateIndex(c.Request().Context(), indexName, chunks); err != nil {
		slog.Error("handbook index creation failed", slog.String("index", indexName), slog.String("error", err.Error()))
		return badGateway(c, "failed to create search index")
	}

	slog.Info("handbook indexed",
		slog.String("index", indexName),
		slog.Int("chunks", len(chunks)),
	)

	return c.JSON(http.StatusCreated, HandbookResponse{
		Success:       true,
		IndexName:     indexName,
		ChunksIndexed: len(chunks),
	})
}
