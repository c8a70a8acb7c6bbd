package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/config"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/storage"
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Configure the generation backend",
}

var aiShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured provider and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		cfg, err := config.LoadAIConfig(root)
		if err != nil {
			return err
		}
		if cfg == nil {
			fmt.Println("No AI config saved; defaults apply (gemini, env overrides honored).")
			return nil
		}
		fmt.Printf("Provider: %s\nModel:    %s\n", cfg.Provider, cfg.Model)
		return nil
	},
}

var aiSetCmd = &cobra.Command{
	Use:   "set [provider] [model]",
	Short: "Set the provider (gemini, openai, anthropic, ollama, mock) and model",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}

		if err := storage.NewFilesystemRepository(root).Initialize(); err != nil {
			return err
		}

		cfg := &config.AIConfig{Provider: args[0]}
		if len(args) > 1 {
			cfg.Model = args[1]
		}
		if err := config.SaveAIConfig(root, cfg); err != nil {
			return err
		}
		fmt.Printf("AI backend set to %s.\n", cfg.Provider)
		return nil
	},
}

func init() {
	aiCmd.AddCommand(aiShowCmd)
	aiCmd.AddCommand(aiSetCmd)
	RootCmd.AddCommand(aiCmd)
}
