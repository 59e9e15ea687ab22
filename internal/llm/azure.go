package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AzureOpenAIClient calls the Azure OpenAI chat completions API for a deployment.
type AzureOpenAIClient struct {
	apiKey     string
	baseURL    string
	deployment string
	apiVersion string
	maxTokens  int
	httpClient *http.Client
}

type chatCompletionRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAzureOpenAIClient создает клиент Azure OpenAI с заданными параметрами.
func NewAzureOpenAIClient(apiKey, baseURL, deployment, apiVersion string, timeout time.Duration, maxTokens int) *AzureOpenAIClient {
	trimmedURL := strings.TrimRight(baseURL, "/")
	return &AzureOpenAIClient{
		apiKey:     apiKey,
		baseURL:    trimmedURL,
		deployment: deployment,
		apiVersion: apiVersion,
		maxTokens:  maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Chat отправляет сообщения в Azure OpenAI и возвращает текст ответа и сырой ответ API.
func (c *AzureOpenAIClient) Chat(ctx context.Context, req ChatRequest) (string, []byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", nil, errors.New("azure openai api key is missing")
	}

	reqBody := chatCompletionRequest{
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   resolveMaxTokens(req.MaxTokens, c.maxTokens),
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, err
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s", c.baseURL, c.deployment, c.apiVersion)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}

	request.Header.Set("api-key", c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var apiErr chatCompletionResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
			return "", body, fmt.Errorf("azure openai api error: %s", apiErr.Error.Message)
		}
		return "", body, fmt.Errorf("azure openai api error: %s", strings.TrimSpace(string(body)))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", body, err
	}

	if len(parsed.Choices) == 0 {
		return "", body, errors.New("azure openai response missing choices")
	}

	return parsed.Choices[0].Message.Content, body, nil
}
