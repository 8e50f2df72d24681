package ai

import "context"

// Request is a single-turn chat completion.
type Request struct {
	System    string
	User      string
	MaxTokens int
	// JSON asks the provider for a JSON object response when it supports it.
	JSON bool
}

type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	// Name identifies the provider/model pair in results and logs.
	Name() string
}
