// Package llm provides text generation backends for song suggestions.
package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"musicmem/internal/core"
)

const (
	providerOpenAI    = "openai"
	providerAnthropic = "anthropic"
	providerOllama    = "ollama"
	providerNone      = "none"
)

// NewProvider returns the text generator configured by config.Provider.
func NewProvider(config *core.LLMConfig, logger *zap.Logger) (core.TextGenerator, error) {
	var (
		client core.TextGenerator
		err    error
	)

	switch config.Provider {
	case providerOpenAI:
		client, err = NewOpenAIClient(config, logger)
	case providerAnthropic:
		client, err = NewAnthropicClient(config, logger)
	case providerOllama:
		client, err = NewOllamaClient(config, logger)
	case providerNone, "":
		return &NoOpClient{}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", config.Provider, err)
	}

	return client, nil
}

// splitSystem separates the system instruction from the conversation turns.
func splitSystem(messages []core.ChatMessage) (system string, turns []core.ChatMessage) {
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}

type NoOpClient struct{}

func (n *NoOpClient) Complete(_ context.Context, _ core.CompletionRequest) (string, error) {
	return "", fmt.Errorf("LLM provider not configured")
}
