package wiring

import (
	domainai "github.com/felixgeelhaar/forgeflow/internal/domain/ai"
	infraai "github.com/felixgeelhaar/forgeflow/internal/infrastructure/ai"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/config"
)

// LoadAIProvider resolves the provider from .forgeflow/ai.yaml, with
// environment variables taking precedence inside the factory.
func LoadAIProvider(root string) (domainai.Provider, error) {
	cfg, err := config.LoadAIConfig(root)
	if err != nil {
		return nil, err
	}

	providerName := ""
	modelName := ""
	if cfg != nil {
		providerName = cfg.Provider
		modelName = cfg.Model
	}

	return infraai.GetDefaultProvider(providerName, modelName)
}
