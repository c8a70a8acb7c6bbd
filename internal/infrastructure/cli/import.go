package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/importer"
)

var importLimit int

var importCmd = &cobra.Command{
	Use:   "import [owner/repo]",
	Short: "Import open GitHub issues as pending nodes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts := strings.SplitN(args[0], "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("repository must be owner/repo, got %q", args[0])
		}

		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		gh := importer.NewGitHubImporter(cmd.Context(), os.Getenv("GITHUB_TOKEN"))
		tasks, err := gh.FetchIssues(cmd.Context(), parts[0], parts[1], importLimit)
		if err != nil {
			return MapError(err)
		}
		if len(tasks) == 0 {
			fmt.Println("No open issues to import.")
			return nil
		}

		imported, err := services.Workflows.ImportTasks(tasks, "github")
		if err != nil {
			return MapError(err)
		}
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}

		fmt.Printf("Imported %d issue(s) from %s:\n", len(imported), args[0])
		for _, t := range imported {
			fmt.Printf("  %-7s %-8s %s\n", t.ID, t.Priority, t.Title)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().IntVar(&importLimit, "limit", 50, "Maximum issues to import")
	RootCmd.AddCommand(importCmd)
}
