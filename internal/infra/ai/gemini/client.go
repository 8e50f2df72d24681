package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/rumera-ai/rumera/internal/domain/ai"
)

const DefaultModel = "gemini-2.0-flash"

// Client is the secondary hosted model, used when the primary provider fails.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: c, model: model}, nil
}

func (g *Client) Name() string { return "gemini" }

func (g *Client) Complete(ctx context.Context, r ai.Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.1),
	}
	if r.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: r.System}}}
	}
	if r.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(r.MaxTokens)
	}
	if r.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(r.User), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", classify(err))
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text: %w", ai.ErrMalformedResponse)
	}
	return text, nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return errors.Join(ai.ErrQuotaExceeded, err)
	case apiErr.Code >= 500:
		return errors.Join(ai.ErrProviderUnavailable, err)
	}
	return err
}
