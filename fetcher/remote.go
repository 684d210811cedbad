package fetcher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Remote API failures that trigger a fallback to direct fetching.
var (
	ErrUnauthorized = errors.New("remote API rejected credentials")
	ErrNoContent    = errors.New("remote API returned no content")
)

type extractRequest struct {
	URL              string `json:"url"`
	HTTPResponseBody bool   `json:"httpResponseBody"`
	BrowserHTML      bool   `json:"browserHtml"`
}

type extractResponse struct {
	URL              string `json:"url"`
	StatusCode       int    `json:"statusCode"`
	BrowserHTML      string `json:"browserHtml"`
	HTTPResponseBody string `json:"httpResponseBody"`
}

// FetchRemote asks the Zyte extract endpoint for both the raw and the
// browser-rendered HTML of url, authenticating with the API key as the
// basic-auth user. Rendered HTML is preferred over the raw body. This does
// not fall back; see Fetch.
func (f *Fetcher) FetchRemote(ctx context.Context, url string) (string, error) {
	payload, err := json.Marshal(extractRequest{
		URL:              url,
		HTTPResponseBody: true,
		BrowserHTML:      true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.opts.RemoteEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(f.opts.RemoteAPIKey, "")

	resp, err := f.remote.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call remote API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("remote API error: %d %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode remote API response: %w", err)
	}

	if out.BrowserHTML != "" {
		return out.BrowserHTML, nil
	}
	if out.HTTPResponseBody != "" {
		body, err := base64.StdEncoding.DecodeString(out.HTTPResponseBody)
		if err != nil {
			return "", fmt.Errorf("failed to decode httpResponseBody: %w", err)
		}
		if len(body) > 0 {
			return string(body), nil
		}
	}

	return "", ErrNoContent
}
