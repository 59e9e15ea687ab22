package progress

import (
	"github.com/google/uuid"

	"example.com/scholarshield/backend/internal/orchestrator"
)

// HubObserver транслирует шаги конвейера оценки в события хаба.
type HubObserver struct {
	hub *Hub
}

// NewHubObserver создает наблюдателя, публикующего шаги конвейера.
func NewHubObserver(hub *Hub) *HubObserver {
	return &HubObserver{hub: hub}
}

// Notify публикует событие шага всем подписчикам кейса.
func (o *HubObserver) Notify(caseID uuid.UUID, step orchestrator.Step, status orchestrator.StepStatus, err error) {
	if o.hub == nil {
		return
	}

	data := map[string]interface{}{"step": string(step)}
	if err != nil {
		data["error"] = err.Error()
	}

	o.hub.Publish(caseID, Event{
		Type: "step_" + string(status),
		Data: data,
	})
}
