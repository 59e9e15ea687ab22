package translate

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
)

// AzureTranslator calls the Azure Translator text REST API.
type AzureTranslator struct {
	apiKey     string
	endpoint   string
	region     string
	httpClient *http.Client
}

type translateItem struct {
	Text string `json:"text"`
}

type translateResult []struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

type translateErrorResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAzureTranslator создает клиент Azure Translator с заданными параметрами.
func NewAzureTranslator(apiKey, endpoint, region string, timeout time.Duration) *AzureTranslator {
	trimmedURL := strings.TrimRight(endpoint, "/")
	return &AzureTranslator{
		apiKey:   apiKey,
		endpoint: trimmedURL,
		region:   region,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Translate переводит текст с английского на указанный язык.
func (c *AzureTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", errors.New("azure translator api key is missing")
	}

	payload, err := json.Marshal([]translateItem{{Text: text}})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/translate?api-version=3.0&from=en&to=%s", c.endpoint, url.QueryEscape(targetLanguage))
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	request.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	request.Header.Set("Ocp-Apim-Subscription-Region", c.region)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var apiErr translateErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
			return "", fmt.Errorf("azure translator api error: %s", apiErr.Error.Message)
		}
		return "", fmt.Errorf("azure translator api error: status %d", response.StatusCode)
	}

	var parsed translateResult
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed) == 0 || len(parsed[0].Translations) == 0 {
		return "", errors.New("translator response missing translations")
	}

	return parsed[0].Translations[0].Text, nil
}
