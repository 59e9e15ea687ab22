package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event описывает событие хода обработки кейса.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Буфер вмещает все события одного прогона конвейера.
const eventBuffer = 32

// Hub раздает события обработки кейсов SSE-подписчикам.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe подписывает на события кейса и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(caseID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, eventBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	caseSubs, ok := h.subscribers[caseID]
	if !ok {
		caseSubs = make(map[chan Event]struct{})
		h.subscribers[caseID] = caseSubs
	}
	caseSubs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, exists := h.subscribers[caseID]; exists {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, caseID)
			}
		}
		close(ch)
	}
}

// Publish отправляет событие всем подписчикам кейса.
// Отставшие подписчики теряют события, доставка не блокирует конвейер.
func (h *Hub) Publish(caseID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[caseID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}
