package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var projectPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "forgeflow",
	Version: Version,
	Short:   "AI-assisted DAG workflow forge",
	Long: `Forgeflow turns a mission prompt into a dependency graph of tasks
and keeps that graph under your control:
1. Synthesize, optimize and refine workflows with an AI architect.
2. Mutate tasks with a bounded undo/redo timeline.
3. Project the graph as stats, a kanban board, a layered layout or exports.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&projectPath, "project", "p", "", "Workspace root (defaults to the current directory)")
}
