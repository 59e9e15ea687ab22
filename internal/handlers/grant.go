package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/scholarshield/backend/internal/models"
	"example.com/scholarshield/backend/internal/orchestrator"
)

type GrantHandler struct {
	Orchestrator *orchestrator.Orchestrator
}

// NewGrantHandler создает обработчик генерации грантовых эссе.
func NewGrantHandler(orc *orchestrator.Orchestrator) *GrantHandler {
	return &GrantHandler{Orchestrator: orc}
}

type GrantRequest struct {
	StudentProfile    StudentProfilePayload `json:"student_profile"`
	GrantRequirements string                `json:"grant_requirements" validate:"required"`
	PolicyContext     []string              `json:"policy_context"`
}

type StudentProfilePayload struct {
	Name           string `json:"name"`
	Major          string `json:"major"`
	Year           string `json:"year"`
	GPA            string `json:"gpa"`
	HardshipReason string `json:"hardship_reason"`
}

type GrantResponse struct {
	Success   bool   `json:"success"`
	Essay     string `json:"essay"`
	WordCount int    `json:"word_count"`
}

// Write генерирует черновик грантового эссе по профилю студента.
func (h *GrantHandler) Write(c echo.Context) error {
	var req GrantRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	profile := models.StudentProfile{
		Name:           req.StudentProfile.Name,
		Major:          req.StudentProfile.Major,
		Year:           req.StudentProfile.Year,
		GPA:            req.StudentProfile.GPA,
		HardshipReason: req.StudentProfile.HardshipReason,
	}

	essay, err := h.Orchestrator.WriteGrant(c.Request().Context(), profile, req.GrantRequirements, strings.Join(req.PolicyContext, "\n"))
	if err != nil {
		if errors.Is(err, orchestrator.ErrValidation) {
			return badRequest(c, err.Error())
		}
		return badGateway(c, "failed to generate grant essay")
	}

	return c.JSON(http.StatusOK, GrantResponse{Success: true, Essay: essay, WordCount: len(strings.Fields(essay))})
}
