package llm

import (
	"context"
	"log/slog"
)

// Client wraps an Adapter with the builder's prompt templates and response
// cleaning. It performs no retries; a failed attempt is surfaced immediately
// and the caller decides whether the user retries.
type Client struct {
	adapter Adapter
	logger  *slog.Logger
}

// NewClient creates a generation client over the given adapter.
func NewClient(adapter Adapter, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{adapter: adapter, logger: logger}
}

// ModelName returns the underlying adapter's model name.
func (c *Client) ModelName() string { return c.adapter.ModelName() }

// Generate produces a complete HTML document from a natural-language
// description. Failures are *GenerationError.
func (c *Client) Generate(ctx context.Context, description string) (string, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: generatePrompt(description)},
	}

	resp, err := c.adapter.Send(ctx, messages)
	if err != nil {
		return "", Classify(err)
	}
	return CleanResponse(resp.Content), nil
}

// Refine produces a complete replacement document applying the change request
// to the current document. Failures are *GenerationError.
func (c *Client) Refine(ctx context.Context, originalPrompt, currentCode, request string) (string, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: refinePrompt(originalPrompt, currentCode, request)},
	}

	resp, err := c.adapter.Send(ctx, messages)
	if err != nil {
		return "", Classify(err)
	}
	return CleanResponse(resp.Content), nil
}

// CompleteAt returns a best-effort inline completion for the editing surface.
// It never returns an error; any failure yields an empty string so the editor
// is never interrupted.
func (c *Client) CompleteAt(ctx context.Context, scope, before, after string) string {
	messages := []Message{
		{Role: "user", Content: completionPrompt(scope, before, after)},
	}

	resp, err := c.adapter.Send(ctx, messages)
	if err != nil {
		c.logger.Debug("inline completion failed", "error", err)
		return ""
	}
	return CleanResponse(resp.Content)
}
