package ai

import (
	"context"
	"fmt"
)

// AnthropicConfig placeholder for anthropic integration configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicProvider is a stub implementation that can be expanded once the SDK is available.
type AnthropicProvider struct{}

// NewAnthropicProvider constructs a new stub provider.
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicProvider{}, nil
}

// GradeSubmission is not yet implemented for Anthropic models.
func (a *AnthropicProvider) GradeSubmission(ctx context.Context, input GradingInput) (GradingResult, error) {
	return GradingResult{}, fmt.Errorf("anthropic grader not implemented")
}

// Tutor is not yet implemented for Anthropic models.
func (a *AnthropicProvider) Tutor(ctx context.Context, history []TutorTurn, question string) (string, error) {
	return "", fmt.Errorf("anthropic tutor not implemented")
}
