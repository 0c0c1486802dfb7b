// Package ai wraps the chat completion providers used to read business
// cards. Each call is a single request with no retry.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/a3tai/cardkit/internal/config"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.0-flash"

	// DefaultMaxTokens bounds the completion length.
	DefaultMaxTokens = 500
)

// ErrEmptyResponse is returned when the provider answers without content.
var ErrEmptyResponse = errors.New("completion returned no content")

// Request is one completion call: a system instruction, a user text part and
// an optional image.
type Request struct {
	System string
	Text   string

	// ImageMIME and ImageBytes carry an optional raster image.
	ImageMIME  string
	ImageBytes []byte
}

// HasImage reports whether the request carries image bytes.
func (r Request) HasImage() bool {
	return len(r.ImageBytes) > 0
}

// ImageDataURL returns the image as a base64 data URL.
func (r Request) ImageDataURL() string {
	if !r.HasImage() {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", r.ImageMIME, base64.StdEncoding.EncodeToString(r.ImageBytes))
}

// Completer sends a request and returns the raw message content.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	// Name identifies the provider in logs and metadata.
	Name() string
}

// New builds the completer selected by cfg. It returns nil, nil when no
// credential is configured; callers treat a nil Completer as "AI disabled".
func New(ctx context.Context, cfg *config.Config) (Completer, error) {
	if !cfg.AIEnabled() {
		return nil, nil
	}

	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL), nil
	case config.ProviderGemini:
		g, err := NewGemini(ctx, cfg.AIAPIKey, cfg.AIModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown ai provider: %s", cfg.AIProvider)
	}
}
