package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/forgeflow/internal/domain/messaging"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/storage"
)

const messagingConfigFile = "messaging.yaml"

// LoadMessagingConfig reads the adapter configuration. A missing file means
// messaging is simply not configured and returns nil.
func LoadMessagingConfig(root string) (*messaging.MessagingConfig, error) {
	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(messagingConfigFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read messaging config: %w", err)
	}

	var cfg messaging.MessagingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messaging config: %w", err)
	}

	return &cfg, nil
}

// SaveMessagingConfig writes the adapter configuration.
func SaveMessagingConfig(root string, cfg *messaging.MessagingConfig) error {
	if cfg == nil {
		return fmt.Errorf("messaging config is nil")
	}

	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(messagingConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal messaging config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
