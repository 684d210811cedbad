package translator

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
)

// Google calls the Cloud Translation v2 REST API.
type Google struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewGoogle creates a Google backend.
func NewGoogle(endpoint, apiKey string, client *http.Client) *Google {
	return &Google{endpoint: endpoint, apiKey: apiKey, client: client}
}

type googleRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source,omitempty"`
	Target string   `json:"target"`
	Format string   `json:"format"`
}

type googleResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Name returns "google".
func (g *Google) Name() string {
	return "google"
}

// Translate sends text as a single plain-text query.
func (g *Google) Translate(ctx context.Context, text, source, target string) (string, error) {
	endpoint, err := url.Parse(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", g.apiKey)
	endpoint.RawQuery = q.Encode()

	var resp googleResponse
	err = postJSON(ctx, g.client, endpoint.String(), nil, googleRequest{
		Q:      []string{text},
		Source: source,
		Target: target,
		Format: "text",
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Data.Translations) == 0 {
		return "", errors.New("empty translation response")
	}
	return html.UnescapeString(resp.Data.Translations[0].TranslatedText), nil
}
