package ai

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/forgeflow/internal/domain/ai"
)

func NewProvider(providerName string, modelName string) (ai.Provider, error) {
	switch providerName {
	case "gemini", "":
		apiKey := os.Getenv("GEMINI_API_KEY")
		return NewGeminiProvider(modelName, apiKey), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		return NewOpenAIProvider(modelName, apiKey), nil
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		return NewAnthropicProvider(modelName, apiKey), nil
	case "ollama":
		return NewOllamaProvider(modelName), nil
	case "mock":
		return &MockProvider{Model: modelName}, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// GetDefaultProvider resolves the provider from environment overrides,
// falling back to the configured defaults, and wraps it with retries.
func GetDefaultProvider(providerName, modelName string) (ai.Provider, error) {
	envProvider := os.Getenv("FORGEFLOW_AI_PROVIDER")
	envModel := os.Getenv("FORGEFLOW_AI_MODEL")

	if envProvider != "" {
		providerName = envProvider
	}
	if envModel != "" {
		modelName = envModel
	}

	inner, err := NewProvider(providerName, modelName)
	if err != nil {
		return nil, err
	}
	return NewResilientProvider(inner), nil
}
