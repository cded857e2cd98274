// Package ai provides the optional LLM fallback: category suggestions and
// free-form reply generation. The deterministic pipeline never depends on it
// succeeding; every caller must tolerate errors or use the stub.
package ai

import (
	"context"
)

// Adapter is the LLM surface the assistant uses.
type Adapter interface {
	// Categorize suggests a category for expense text.
	Categorize(ctx context.Context, text string) (string, error)
	// GenerateReply produces free-form reply text for a prompt.
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// Stub is a deterministic Adapter for tests and rules-only deployments.
type Stub struct {
	Category string
	Reply    string
}

// NewStub creates a stub with fixed outputs.
func NewStub() *Stub {
	return &Stub{Category: "other", Reply: ""}
}

func (s *Stub) Categorize(context.Context, string) (string, error) {
	return s.Category, nil
}

func (s *Stub) GenerateReply(context.Context, string) (string, error) {
	return s.Reply, nil
}
