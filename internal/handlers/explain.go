package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/scholarshield/backend/internal/orchestrator"
	"example.com/scholarshield/backend/internal/translate"
)

const defaultExplainLanguage = "es"

type ExplainHandler struct {
	Orchestrator *orchestrator.Orchestrator
}

// NewExplainHandler создает обработчик объяснений для родителей.
func NewExplainHandler(orc *orchestrator.Orchestrator) *ExplainHandler {
	return &ExplainHandler{Orchestrator: orc}
}

type ExplainRequest struct {
	RiskSummary string `json:"risk_summary" validate:"required"`
	Language    string `json:"language"`
}

type ExplainResponse struct {
	Success         bool   `json:"success"`
	OriginalSummary string `json:"original_summary"`
	TranslatedText  string `json:"translated_text"`
	Language        string `json:"language"`
	Voice           string `json:"voice"`
	AudioBase64     string `json:"audio_base64"`
}

type LanguageOption struct {
	Code  string `json:"code"`
	Voice string `json:"voice"`
}

type LanguagesResponse struct {
	Languages []LanguageOption `json:"languages"`
}

// Explain переводит сводку риска на язык семьи и озвучивает ее.
func (h *ExplainHandler) Explain(c echo.Context) error {
	var req ExplainRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = defaultExplainLanguage
	}

	explanation, err := h.Orchestrator.ExplainToParent(c.Request().Context(), req.RiskSummary, language)
	if err != nil {
		if errors.Is(err, orchestrator.ErrValidation) {
			return badRequest(c, err.Error())
		}
		return badGateway(c, "failed to generate parent explanation")
	}

	return c.JSON(http.StatusOK, ExplainResponse{
		Success:         true,
		OriginalSummary: explanation.OriginalSummary,
		TranslatedText:  explanation.TranslatedText,
		Language:        explanation.Language,
		Voice:           explanation.Voice,
		AudioBase64:     explanation.AudioBase64,
	})
}

// Languages возвращает поддерживаемые языки объяснений с голосами озвучки.
func (h *ExplainHandler) Languages(c echo.Context) error {
	codes := translate.SupportedLanguages()
	options := make([]LanguageOption, 0, len(codes))
	for _, code := range codes {
		options = append(options, LanguageOption{Code: code, Voice: translate.VoiceFor(code)})
	}

	return c.JSON(http.StatusOK, LanguagesResponse{Languages: options})
}
