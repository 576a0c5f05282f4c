package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Ark request defaults. Sampling is near-deterministic and the model's
// extended reasoning mode is disabled so responses stay cheap and parseable.
const (
	arkTemperature    = 0.1
	arkMaxTokens      = 2048
	arkRequestTimeout = 60 * time.Second
	arkMaxRetries     = 3
	arkBackoffStep    = 5 * time.Second
)

// ArkClient implements Gateway against the Ark chat-completions endpoint.
// The endpoint speaks an OpenAI-style envelope extended with a vendor
// "thinking" field, so the payload is assembled by hand.
type ArkClient struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	maxRetries int
	sleep      func(time.Duration)
}

// NewArkClient creates a client for the Ark chat-completions API.
func NewArkClient(apiKey, apiURL, model string) *ArkClient {
	return &ArkClient{
		apiKey:     apiKey,
		apiURL:     apiURL,
		model:      model,
		httpClient: &http.Client{Timeout: arkRequestTimeout},
		maxRetries: arkMaxRetries,
		sleep:      time.Sleep,
	}
}

type arkContentPart struct {
	Type     string       `json:"type"`
	Text     string       `json:"text,omitempty"`
	ImageURL *arkImageURL `json:"image_url,omitempty"`
}

type arkImageURL struct {
	URL string `json:"url"`
}

type arkMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string for system, []arkContentPart for user
}

type arkThinking struct {
	Type string `json:"type"`
}

type arkRequest struct {
	Model       string       `json:"model"`
	Messages    []arkMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
	Stream      bool         `json:"stream"`
	Thinking    arkThinking  `json:"thinking"`
}

type arkResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Invoke performs one chat completion with bounded retry. HTTP 400/401/404 are
// classified immediately without retry; connection errors and 5xx responses
// retry with linearly increasing backoff until the attempt budget is spent.
func (c *ArkClient) Invoke(ctx context.Context, inv Invocation) Outcome {
	payload := arkRequest{
		Model:       c.model,
		Messages:    buildArkMessages(inv),
		Temperature: arkTemperature,
		MaxTokens:   arkMaxTokens,
		Stream:      false,
		Thinking:    arkThinking{Type: "disabled"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Fail(BadRequest, fmt.Sprintf("failed to encode request: %v", err))
	}

	var lastDetail string
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		outcome, retry := c.attempt(ctx, body)
		if !retry {
			return outcome
		}
		lastDetail = outcome.Err.Detail
		log.Printf("model call attempt %d/%d failed: %s", attempt, c.maxRetries, lastDetail)
		if attempt < c.maxRetries {
			c.sleep(arkBackoffStep * time.Duration(attempt))
		}
	}
	return Fail(ExhaustedRetries, lastDetail)
}

// attempt issues a single request. The second return value reports whether the
// failure is transient and the caller should retry.
func (c *ArkClient) attempt(ctx context.Context, body []byte) (Outcome, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return Fail(BadRequest, fmt.Sprintf("failed to build request: %v", err)), false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Fail(TransientNetwork, fmt.Sprintf("request canceled: %v", ctx.Err())), false
		}
		return Fail(TransientNetwork, fmt.Sprintf("request failed: %v", err)), true
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fail(TransientNetwork, fmt.Sprintf("failed to read response: %v", err)), true
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return Fail(BadRequest, truncateDetail(string(respBody))), false
	case resp.StatusCode == http.StatusUnauthorized:
		return Fail(AuthError, "invalid API key"), false
	case resp.StatusCode == http.StatusNotFound:
		return Fail(NotFound, "API URL not found"), false
	case resp.StatusCode != http.StatusOK:
		return Fail(TransientNetwork, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncateDetail(string(respBody)))), true
	}

	var envelope arkResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return Fail(BadRequest, fmt.Sprintf("malformed completion envelope: %v", err)), false
	}
	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		return Fail(BadRequest, "empty completion envelope"), false
	}
	return Success(envelope.Choices[0].Message.Content), false
}

// Close implements Gateway; the HTTP client holds no resources to release.
func (c *ArkClient) Close() error { return nil }

// buildArkMessages assembles the system and user messages, attaching up to
// three encoded local images to the user turn.
func buildArkMessages(inv Invocation) []arkMessage {
	parts := []arkContentPart{{Type: "text", Text: inv.UserPrompt}}
	for _, img := range readImages(localImageRefs(inv.ImageRefs)) {
		parts = append(parts, arkContentPart{
			Type:     "image_url",
			ImageURL: &arkImageURL{URL: img.DataURL()},
		})
	}
	return []arkMessage{
		{Role: "system", Content: inv.SystemPrompt},
		{Role: "user", Content: parts},
	}
}

// truncateDetail keeps failure details log-friendly.
func truncateDetail(s string) string {
	const maxDetail = 500
	if len(s) > maxDetail {
		return s[:maxDetail] + "..."
	}
	return s
}
