package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"example.com/scholarshield/backend/internal/models"
)

const uploadBatchSize = 1000

// AzureClient calls the Azure AI Search REST API.
type AzureClient struct {
	apiKey     string
	endpoint   string
	apiVersion string
	httpClient *http.Client
}

type azureSearchRequest struct {
	Search string `json:"search"`
	Top    int    `json:"top"`
	Count  bool   `json:"count"`
}

type azureSearchResponse struct {
	Value []struct {
		Score   float64 `json:"@search.score"`
		Content string  `json:"content"`
		Source  string  `json:"source"`
		Section string  `json:"section"`
		Page    string  `json:"page"`
	} `json:"value"`
}

type azureIndexField struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Key        bool   `json:"key,omitempty"`
	Searchable bool   `json:"searchable,omitempty"`
	Filterable bool   `json:"filterable,omitempty"`
}

type azureIndexSchema struct {
	Name   string            `json:"name"`
	Fields []azureIndexField `json:"fields"`
}

type azureUploadAction struct {
	Action  string `json:"@search.action"`
	ID      string `json:"id"`
	Content string `json:"content"`
	Source  string `json:"source"`
	Section string `json:"section"`
	Page    string `json:"page"`
}

type azureUploadRequest struct {
	Value []azureUploadAction `json:"value"`
}

type azureUploadResponse struct {
	Value []struct {
		Key    string `json:"key"`
		Status bool   `json:"status"`
	} `json:"value"`
}

type azureErrorResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAzureClient создает клиент Azure AI Search с заданными параметрами.
func NewAzureClient(apiKey, endpoint, apiVersion string, timeout time.Duration) *AzureClient {
	trimmedURL := strings.TrimRight(endpoint, "/")
	return &AzureClient{
		apiKey:     apiKey,
		endpoint:   trimmedURL,
		apiVersion: apiVersion,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search выполняет полнотекстовый запрос к индексу и возвращает фрагменты с оценкой релевантности.
func (c *AzureClient) Search(ctx context.Context, query, index string, top int) ([]models.PolicySnippet, error) {
	if top <= 0 {
		top = defaultTop
	}

	endpoint := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", c.endpoint, url.PathEscape(index), c.apiVersion)
	body, err := c.send(ctx, http.MethodPost, endpoint, azureSearchRequest{
		Search: query,
		Top:    top,
		Count:  true,
	})
	if err != nil {
		return nil, err
	}

	var parsed azureSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	snippets := make([]models.PolicySnippet, 0, len(parsed.Value))
	for _, doc := range parsed.Value {
		snippets = append(snippets, models.PolicySnippet{
			Content: doc.Content,
			Source:  doc.Source,
			Score:   doc.Score,
			Section: doc.Section,
			Page:    doc.Page,
		})
	}
	return snippets, nil
}

// CreateIndex создает индекс с нужной схемой и загружает фрагменты пакетами.
func (c *AzureClient) CreateIndex(ctx context.Context, name string, chunks []Chunk) error {
	if !ValidIndexName(name) {
		return fmt.Errorf("invalid index name %q", name)
	}
	if err := c.ensureIndex(ctx, name); err != nil {
		return err
	}

	for start := 0; start < len(chunks); start += uploadBatchSize {
		end := start + uploadBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := c.uploadBatch(ctx, name, chunks[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *AzureClient) ensureIndex(ctx context.Context, name string) error {
	schema := azureIndexSchema{
		Name: name,
		Fields: []azureIndexField{
			{Name: "id", Type: "Edm.String", Key: true},
			{Name: "content", Type: "Edm.String", Searchable: true},
			{Name: "source", Type: "Edm.String", Filterable: true},
			{Name: "section", Type: "Edm.String", Filterable: true},
			{Name: "page", Type: "Edm.String"},
		},
	}

	endpoint := fmt.Sprintf("%s/indexes/%s?api-version=%s", c.endpoint, url.PathEscape(name), c.apiVersion)
	if _, err := c.send(ctx, http.MethodPut, endpoint, schema); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

func (c *AzureClient) uploadBatch(ctx context.Context, name string, chunks []Chunk) error {
	actions := make([]azureUploadAction, 0, len(chunks))
	for _, chunk := range chunks {
		actions = append(actions, azureUploadAction{
			Action:  "upload",
			ID:      chunk.ID,
			Content: chunk.Content,
			Source:  chunk.Source,
			Section: chunk.Section,
			Page:    chunk.Page,
		})
	}

	endpoint := fmt.Sprintf("%s/indexes/%s/docs/index?api-version=%s", c.endpoint, url.PathEscape(name), c.apiVersion)
	body, err := c.send(ctx, http.MethodPost, endpoint, azureUploadRequest{Value: actions})
	if err != nil {
		return fmt.Errorf("upload documents to %s: %w", name, err)
	}

	var parsed azureUploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return err
	}
	for _, result := range parsed.Value {
		if !result.Status {
			return fmt.Errorf("document %s was not indexed", result.Key)
		}
	}
	return nil
}

func (c *AzureClient) send(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("azure search api key is missing")
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	request.Header.Set("api-key", c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var apiErr azureErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
			return nil, fmt.Errorf("azure search api error: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("azure search api error: status %d", response.StatusCode)
	}
	return body, nil
}
