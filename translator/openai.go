package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// OpenAI translates through the chat completions API.
type OpenAI struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewOpenAI creates an OpenAI backend.
func NewOpenAI(endpoint, apiKey, model string, client *http.Client) *OpenAI {
	return &OpenAI{endpoint: endpoint, apiKey: apiKey, model: model, client: client}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Name returns "openai".
func (o *OpenAI) Name() string {
	return "openai"
}

// Translate asks the model for a translation of text and nothing else.
func (o *OpenAI) Translate(ctx context.Context, text, source, target string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the user's text from language code %q to language code %q. "+
			"Keep technical terms and product names accurate. "+
			"Reply with the translation only.", source, target)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+o.apiKey)

	var resp chatResponse
	err := postJSON(ctx, o.client, o.endpoint, header, chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: text},
		},
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
