package model

import (
	"context"
	"fmt"

	"github.com/jonathan/content-strategist/internal/config"
)

// Gateway is the abstraction every pipeline stage uses to call the model backend.
type Gateway interface {
	// Invoke performs one chat completion. It never returns a Go error; all
	// failure modes are encoded in the Outcome.
	Invoke(ctx context.Context, inv Invocation) Outcome
	// Close releases any resources held by the provider client.
	Close() error
}

// NewGateway creates a Gateway for the configured provider.
func NewGateway(ctx context.Context, cfg *config.Config) (Gateway, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "", "ark":
		return NewArkClient(cfg.ArkAPIKey, cfg.ArkAPIURL, cfg.ArkModel), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
