package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient implements Gateway for Google Gemini. It exists so deployments
// without Ark access can run the same pipeline; failures are mapped onto the
// common taxonomy.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini-backed gateway.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: modelName}, nil
}

// Invoke performs one generation call. The SDK retries transient errors
// internally, so classification happens on the final error only.
func (c *GeminiClient) Invoke(ctx context.Context, inv Invocation) Outcome {
	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(0.1) // match the deterministic sampling of the Ark path
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(inv.SystemPrompt)}}

	parts := []genai.Part{genai.Text(inv.UserPrompt)}
	for _, img := range readImages(localImageRefs(inv.ImageRefs)) {
		parts = append(parts, genai.ImageData(img.Subtype, img.Bytes))
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return classifyGeminiError(err)
	}

	text, err := geminiResponseText(resp)
	if err != nil {
		return Fail(BadRequest, err.Error())
	}
	return Success(text)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// classifyGeminiError maps SDK errors onto the gateway failure taxonomy.
func classifyGeminiError(err error) Outcome {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest:
			return Fail(BadRequest, apiErr.Message)
		case http.StatusUnauthorized, http.StatusForbidden:
			return Fail(AuthError, apiErr.Message)
		case http.StatusNotFound:
			return Fail(NotFound, apiErr.Message)
		default:
			return Fail(ExhaustedRetries, apiErr.Message)
		}
	}
	return Fail(TransientNetwork, err.Error())
}

// geminiResponseText extracts the first candidate's text parts. An empty
// candidate set is a failure, not empty success.
func geminiResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
