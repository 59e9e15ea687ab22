package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type RootResponse struct {
	Message string `json:"message"`
}

// Health возвращает простой статус сервиса.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Root возвращает приветственное сообщение API.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, RootResponse{Message: "ScholarShield API is running"})
}
