package llm

import "context"

const defaultMaxTokens = 1500

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

type Client interface {
	Chat(ctx context.Context, req ChatRequest) (string, []byte, error)
}

func resolveMaxTokens(request, client int) int {
	if request > 0 {
		return request
	}
	if client > 0 {
		return client
	}

	return defaultMaxTokens
}
