package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/unibrain/backend/internal/models"
)

// LibreTranslator calls a LibreTranslate-compatible HTTP API.
type LibreTranslator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewLibreTranslator creates a client for the API rooted at endpoint.
func NewLibreTranslator(endpoint, apiKey string, timeout time.Duration) *LibreTranslator {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &LibreTranslator{
		endpoint: strings.TrimRight(endpoint, "/") + "/translate",
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func (l *LibreTranslator) Translate(ctx context.Context, text string, target models.Language) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: "auto",
		Target: string(target),
		Format: "text",
		APIKey: l.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling libretranslate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", NewRateLimitError("libretranslate",
			fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(respBody)),
			ParseRetryAfterHeader(resp.Header.Get("Retry-After")))
	}

	var parsed libreResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := parsed.Error
		if msg == "" {
			msg = truncateBody(respBody)
		}
		return "", fmt.Errorf("libretranslate error (status %d): %s", resp.StatusCode, msg)
	}

	return parsed.TranslatedText, nil
}

func truncateBody(b []byte) string {
	const maxLen = 300
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
