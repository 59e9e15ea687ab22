package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/scholarshield/backend/internal/models"
	"example.com/scholarshield/backend/internal/repository"
)

const (
	exportTypeActions  = "actions"
	exportTypeRequests = "requests"
)

const timeLayout = time.RFC3339

type CaseHandler struct {
	Archive repository.Archive
}

// NewCaseHandler создает обработчик архива кейсов.
func NewCaseHandler(archive repository.Archive) *CaseHandler {
	return &CaseHandler{Archive: archive}
}

type CaseListResponse struct {
	Cases []repository.CaseSummary `json:"cases"`
}

type AgentRequestsResponse struct {
	Requests []models.AgentRequest `json:"requests"`
}

type CaseExportResponse struct {
	Case          models.CaseRecord     `json:"case"`
	AgentRequests []models.AgentRequest `json:"agent_requests"`
}

// List возвращает последние кейсы, свежие первыми.
func (h *CaseHandler) List(c echo.Context) error {
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	summaries, err := h.Archive.ListCases(c.Request().Context(), limit)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, CaseListResponse{Cases: summaries})
}

// Get возвращает полный кейс вместе с телом оценки.
func (h *CaseHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid case id")
	}

	record, err := h.Archive.GetCase(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "case not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, record)
}

// AgentRequests возвращает журнал обращений к моделям по кейсу.
func (h *CaseHandler) AgentRequests(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid case id")
	}

	entries, err := h.Archive.ListAgentRequests(c.Request().Context(), id)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, AgentRequestsResponse{Requests: entries})
}

// ExportJSON выгружает кейс вместе с журналом обращений в JSON-файл.
func (h *CaseHandler) ExportJSON(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid case id")
	}

	record, err := h.Archive.GetCase(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "case not found")
		}
		return serverError(c)
	}

	requests, err := h.Archive.ListAgentRequests(c.Request().Context(), id)
	if err != nil {
		return serverError(c)
	}

	filename := "case-" + record.ID.String() + ".json"
	c.Response().Header().Set(echo.HeaderContentType, "application/json")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.JSON(http.StatusOK, CaseExportResponse{Case: record, AgentRequests: requests})
}

// ExportCSV выгружает действия или журнал обращений кейса в CSV-файл.
func (h *CaseHandler) ExportCSV(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid case id")
	}

	record, err := h.Archive.GetCase(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "case not found")
		}
		return serverError(c)
	}

	exportType := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	if exportType == "" {
		exportType = exportTypeActions
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch exportType {
	case exportTypeActions:
		if err := writeActionsCSV(writer, record); err != nil {
			return serverError(c)
		}
	case exportTypeRequests:
		requests, err := h.Archive.ListAgentRequests(c.Request().Context(), id)
		if err != nil {
			return serverError(c)
		}
		if err := writeRequestsCSV(writer, requests); err != nil {
			return serverError(c)
		}
	default:
		return badRequest(c, "invalid export type")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "case-" + record.ID.String() + "-" + exportType + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportAllCSV выгружает сводку всех кейсов в CSV-файл.
func (h *CaseHandler) ExportAllCSV(c echo.Context) error {
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	summaries, err := h.Archive.ListCases(c.Request().Context(), limit)
	if err != nil {
		return serverError(c)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeCasesCSV(writer, summaries); err != nil {
		return serverError(c)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "cases-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeActionsCSV(writer *csv.Writer, record models.CaseRecord) error {
	header := []string{"case_id", "vendor_name", "invoice_id", "risk_level", "action", "description", "priority"}
	if err := writer.Write(header); err != nil {
		return err
	}

	bill := record.Assessment.Bill
	for _, action := range record.Assessment.RecommendedActions {
		row := []string{
			record.ID.String(),
			bill.VendorName,
			bill.InvoiceID,
			string(record.Assessment.RiskLevel),
			action.Action,
			action.Description,
			string(action.Priority),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func writeRequestsCSV(writer *csv.Writer, requests []models.AgentRequest) error {
	header := []string{"case_id", "agent", "prompt", "response", "error", "created_at"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, request := range requests {
		row := []string{
			request.CaseID.String(),
			request.Agent,
			request.Prompt,
			request.Response,
			request.Error,
			request.CreatedAt.UTC().Format(timeLayout),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func writeCasesCSV(writer *csv.Writer, summaries []repository.CaseSummary) error {
	header := []string{"case_id", "vendor_name", "invoice_id", "total_amount_cents", "due_date", "risk_level", "status", "created_at"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, summary := range summaries {
		record := []string{
			summary.ID.String(),
			summary.VendorName,
			summary.InvoiceID,
			formatInt64(summary.TotalAmountCents),
			summary.DueDate,
			string(summary.RiskLevel),
			string(summary.Status),
			summary.CreatedAt.UTC().Format(timeLayout),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func parseLimit(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return limit, nil
}

func formatInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}
