// Package llm talks to hosted text-generation models to produce and refine
// complete single-file HTML applications.
package llm

import (
	"context"
	"time"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// Adapter defines the interface for LLM providers
type Adapter interface {
	// Send sends messages and returns the complete response
	Send(ctx context.Context, messages []Message) (*Message, error)

	// ModelName returns the current model name
	ModelName() string

	// Available checks if the adapter is properly configured
	Available() bool
}

// AdapterConfig contains common configuration for LLM adapters
type AdapterConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// DefaultTimeout for LLM requests
const DefaultTimeout = 120 * time.Second
