package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"example.com/scholarshield/backend/internal/models"
)

const (
	analyzeAPIVersion = "2023-07-31"
	modelInvoice      = "prebuilt-invoice"
	modelRead         = "prebuilt-read"

	pollInterval = time.Second
)

// AzureClient calls the Azure Document Intelligence (Form Recognizer) REST API.
type AzureClient struct {
	apiKey     string
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

type analyzeField struct {
	Type          string `json:"type"`
	ValueString   string `json:"valueString,omitempty"`
	ValueDate     string `json:"valueDate,omitempty"`
	Content       string `json:"content,omitempty"`
	ValueCurrency *struct {
		Amount float64 `json:"amount"`
	} `json:"valueCurrency,omitempty"`
}

type analyzeBody struct {
	Content   string `json:"content"`
	Documents []struct {
		Fields map[string]analyzeField `json:"fields"`
	} `json:"documents"`
}

type analyzeResult struct {
	Status        string       `json:"status"`
	AnalyzeResult *analyzeBody `json:"analyzeResult,omitempty"`
	Error         *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAzureClient создает клиент Azure Document Intelligence с заданными параметрами.
func NewAzureClient(apiKey, endpoint string, timeout time.Duration) *AzureClient {
	return &AzureClient{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// AnalyzeBill распознает счет моделью prebuilt-invoice и возвращает структурированные поля.
func (c *AzureClient) AnalyzeBill(ctx context.Context, doc []byte) (models.BillData, error) {
	result, err := c.analyze(ctx, modelInvoice, doc)
	if err != nil {
		return models.BillData{}, err
	}

	bill := models.BillData{}
	if len(result.Documents) > 0 {
		fields := result.Documents[0].Fields

		if field, ok := fields["InvoiceTotal"]; ok && field.ValueCurrency != nil {
			bill.TotalAmountCents = centsFromAmount(field.ValueCurrency.Amount)
		}
		if field, ok := fields["DueDate"]; ok && field.ValueDate != "" {
			if normalized, ok := normalizeDate(field.ValueDate); ok {
				bill.DueDate = normalized
			}
		}
		if field, ok := fields["VendorName"]; ok {
			bill.VendorName = strings.TrimSpace(firstNonEmpty(field.ValueString, field.Content))
		}
		if field, ok := fields["InvoiceId"]; ok {
			bill.InvoiceID = strings.TrimSpace(firstNonEmpty(field.ValueString, field.Content))
		}
	}

	fillFromText(result.Content, &bill)

	if bill.TotalAmountCents <= 0 && bill.DueDate == "" && bill.VendorName == "" && bill.InvoiceID == "" {
		return models.BillData{}, errors.New("document contains no recognizable bill fields")
	}

	return bill, nil
}

// ReadText извлекает текст документа моделью prebuilt-read.
func (c *AzureClient) ReadText(ctx context.Context, doc []byte) (string, error) {
	result, err := c.analyze(ctx, modelRead, doc)
	if err != nil {
		return "", err
	}

	return result.Content, nil
}

func (c *AzureClient) analyze(ctx context.Context, model string, doc []byte) (*analyzeBody, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("document intelligence api key is missing")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	operationURL, err := c.submit(ctx, model, doc)
	if err != nil {
		return nil, err
	}

	for {
		result, err := c.poll(ctx, operationURL)
		if err != nil {
			return nil, err
		}

		switch result.Status {
		case "succeeded":
			if result.AnalyzeResult == nil {
				return nil, errors.New("document intelligence response missing analyze result")
			}
			return result.AnalyzeResult, nil
		case "failed":
			if result.Error != nil {
				return nil, fmt.Errorf("document intelligence analysis failed: %s", result.Error.Message)
			}
			return nil, errors.New("document intelligence analysis failed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (c *AzureClient) submit(ctx context.Context, model string, doc []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/formrecognizer/documentModels/%s:analyze?api-version=%s", c.endpoint, model, analyzeAPIVersion)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(doc))
	if err != nil {
		return "", err
	}

	request.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	request.Header.Set("Content-Type", "application/octet-stream")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}

	if response.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("document intelligence api error: %s", strings.TrimSpace(string(body)))
	}

	operationURL := response.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", errors.New("document intelligence response missing operation location")
	}

	return operationURL, nil
}

func (c *AzureClient) poll(ctx context.Context, operationURL string) (analyzeResult, error) {
	var result analyzeResult

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return result, err
	}

	request.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return result, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return result, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return result, fmt.Errorf("document intelligence api error: %s", strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return result, err
	}

	return result, nil
}

func centsFromAmount(amount float64) int64 {
	if amount < 0 {
		return 0
	}

	return int64(math.Round(amount * 100))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}

	return ""
}
