package translate

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

const speechOutputFormat = "riff-24khz-16bit-mono-pcm"

// AzureSpeech calls the Azure Cognitive Services text-to-speech REST API.
type AzureSpeech struct {
	apiKey     string
	region     string
	httpClient *http.Client
}

// NewAzureSpeech создает клиент синтеза речи для указанного региона.
func NewAzureSpeech(apiKey, region string, timeout time.Duration) *AzureSpeech {
	return &AzureSpeech{
		apiKey: apiKey,
		region: region,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize озвучивает текст выбранным голосом и возвращает WAV-аудио.
func (c *AzureSpeech) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("azure speech api key is missing")
	}

	ssml := fmt.Sprintf(
		"<speak version='1.0' xml:lang='%s'><voice name='%s'>%s</voice></speak>",
		voiceLocale(voice), voice, html.EscapeString(text),
	)

	endpoint := fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", c.region)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, err
	}

	request.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	request.Header.Set("Content-Type", "application/ssml+xml")
	request.Header.Set("X-Microsoft-OutputFormat", speechOutputFormat)
	request.Header.Set("User-Agent", "scholarshield-backend")

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
		message := strings.TrimSpace(string(body))
		if message == "" {
			return nil, fmt.Errorf("azure speech api error: status %d", response.StatusCode)
		}
		return nil, fmt.Errorf("azure speech api error: %s", message)
	}
	return body, nil
}

func voiceLocale(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 2 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}
