package server

import (
	"github.com/labstack/echo/v4"

	"example.com/scholarshield/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	assessHandler *handlers.AssessHandler,
	grantHandler *handlers.GrantHandler,
	explainHandler *handlers.ExplainHandler,
	handbookHandler *handlers.HandbookHandler,
	caseHandler *handlers.CaseHandler,
	progressHandler *handlers.ProgressHandler,
	agentRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/", handlers.Root)
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")

	api.POST("/assess", assessHandler.Assess, agentRateLimiter)
	api.POST("/write-grant", grantHandler.Write, agentRateLimiter)
	api.POST("/explain-to-parent", explainHandler.Explain, agentRateLimiter)
	api.GET("/languages", explainHandler.Languages)
	api.POST("/handbook", handbookHandler.Upload)

	cases := api.Group("/cases")
	cases.GET("", caseHandler.List)
	cases.GET("/export/csv", caseHandler.ExportAllCSV)
	cases.GET("/:id", caseHandler.Get)
	cases.GET("/:id/requests", caseHandler.AgentRequests)
	cases.GET("/:id/export/json", caseHandler.ExportJSON)
	cases.GET("/:id/export/csv", caseHandler.ExportCSV)
	cases.GET("/:id/progress", progressHandler.Stream)
}
