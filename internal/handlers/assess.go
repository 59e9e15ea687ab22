package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/scholarshield/backend/internal/models"
	"example.com/scholarshield/backend/internal/orchestrator"
	"example.com/scholarshield/backend/internal/progress"
	"example.com/scholarshield/backend/internal/repository"
	"example.com/scholarshield/backend/internal/risk"
	"example.com/scholarshield/backend/internal/search"
)

type AssessHandler struct {
	Orchestrator   *orchestrator.Orchestrator
	Archive        repository.Archive
	Hub            *progress.Hub
	MaxUploadBytes int64
}

// NewAssessHandler создает обработчик оценки загруженных счетов.
func NewAssessHandler(orc *orchestrator.Orchestrator, archive repository.Archive, hub *progress.Hub, maxUploadBytes int) *AssessHandler {
	return &AssessHandler{
		Orchestrator:   orc,
		Archive:        archive,
		Hub:            hub,
		MaxUploadBytes: int64(maxUploadBytes),
	}
}

type AssessResponse struct {
	Success    bool                  `json:"success"`
	CaseID     uuid.UUID             `json:"case_id"`
	Assessment models.CaseAssessment `json:"assessment"`
}

// Assess прогоняет счет через конвейер оценки и архивирует результат.
func (h *AssessHandler) Assess(c echo.Context) error {
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

	// Клиент может заранее сгенерировать case_id, чтобы открыть SSE-поток до загрузки.
	caseID := uuid.New()
	if raw := strings.TrimSpace(c.FormValue("case_id")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil || parsed == uuid.Nil {
			return badRequest(c, "invalid case id")
		}
		caseID = parsed
	}

	index := strings.TrimSpace(c.FormValue("university_index"))
	if index != "" && !search.ValidIndexName(index) {
		return badRequest(c, "invalid university index")
	}

	assessment, err := h.Orchestrator.Assess(c.Request().Context(), orchestrator.AssessInput{
		CaseID:   caseID,
		Document: document,
		Index:    index,
	})
	if err != nil {
		publishCaseFailed(h.Hub, caseID, err)
		if errors.Is(err, orchestrator.ErrValidation) || errors.Is(err, orchestrator.ErrExtraction) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	record := models.CaseRecord{
		ID:         caseID,
		IndexName:  index,
		Assessment: assessment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Archive.SaveCase(c.Request().Context(), record); err != nil {
		slog.Warn("case archive save failed", slog.String("case_id", caseID.String()), slog.String("error", err.Error()))
	}

	publishCaseCompleted(h.Hub, caseID, assessment)

	return c.JSON(http.StatusOK, AssessResponse{
		Success:    assessment.Status == models.CaseStatusCompleted,
		CaseID:     caseID,
		Assessment: assessment,
	})
}

func publishCaseCompleted(hub *progress.Hub, caseID uuid.UUID, assessment models.CaseAssessment) {
	if hub == nil {
		return
	}

	hub.Publish(caseID, progress.Event{
		Type: "case_completed",
		Data: map[string]interface{}{
			"case_id":      caseID.String(),
			"status":       string(assessment.Status),
			"risk_summary": risk.Summary(assessment.Bill, assessment.RiskLevel),
		},
	})
}

func publishCaseFailed(hub *progress.Hub, caseID uuid.UUID, err error) {
	if hub == nil {
		return
	}

	hub.Publish(caseID, progress.Event{
		Type: "case_failed",
		Data: map[string]interface{}{
			"case_id": caseID.String(),
			"error":   err.Error(),
		},
	})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func badGateway(c echo.Context, message string) error {
	return c.JSON(http.StatusBadGateway, map[string]string{"error": message})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
