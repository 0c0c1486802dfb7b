package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini is a Completer backed by the Gemini generate content API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini completer. An empty model selects
// DefaultGeminiModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Name implements Completer.
func (g *Gemini) Name() string { return "gemini" }

// Complete implements Completer.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	contents, config := buildGeminiContent(req)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func buildGeminiContent(req Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	parts := []*genai.Part{genai.NewPartFromText(req.Text)}
	if req.HasImage() {
		parts = append(parts, genai.NewPartFromBytes(req.ImageBytes, req.ImageMIME))
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		MaxOutputTokens:  DefaultMaxTokens,
		ResponseMIMEType: "application/json",
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		}
	}

	return []*genai.Content{{Role: "user", Parts: parts}}, config
}
