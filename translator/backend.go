package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pevans/technews/config"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/metrics"
)

// requestTimeout bounds each backend call.
const requestTimeout = 60 * time.Second

// New builds a translator for the configured service. google and openai
// require an API key; azure and unknown services construct successfully
// but fail every call with ErrNotSupported.
func New(cfg config.TranslationConfig, log logger.Logger, m *metrics.Metrics) (*Translator, error) {
	backend, err := NewBackend(cfg, &http.Client{Timeout: requestTimeout})
	if err != nil {
		return nil, err
	}
	return NewTranslator(backend, cfg.SourceLanguage, cfg.TargetLanguage, cfg.MaxChunkSize, log, m), nil
}

// NewBackend selects the backend named by cfg.Service.
func NewBackend(cfg config.TranslationConfig, client *http.Client) (Backend, error) {
	service := strings.ToLower(strings.TrimSpace(cfg.Service))
	switch service {
	case "google":
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("%w: google translation requires an API key", config.ErrMissingCredentials)
		}
		return NewGoogle(cfg.GoogleEndpoint, cfg.GoogleAPIKey, client), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: openai translation requires an API key", config.ErrMissingCredentials)
		}
		return NewOpenAI(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIModel, client), nil
	default:
		return unsupported{name: service}, nil
	}
}

// unsupported stands in for backends with no implementation.
type unsupported struct {
	name string
}

func (u unsupported) Name() string {
	return u.name
}

func (u unsupported) Translate(context.Context, string, string, string) (string, error) {
	return "", fmt.Errorf("%w: %q", ErrNotSupported, u.name)
}

// postJSON sends body as JSON and decodes a 2xx response into out. Non-2xx
// responses are returned as errors including the response body.
func postJSON(ctx context.Context, client *http.Client, endpoint string, header http.Header, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
