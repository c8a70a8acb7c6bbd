package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forgeflow/internal/domain/projection"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show workflow health metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		reg := services.Workflows.Registry()
		stats := projection.ComputeStats(reg)

		fmt.Printf("Nodes:          %d\n", stats.Total)
		fmt.Printf("  Pending:      %d\n", stats.Pending)
		fmt.Printf("  Running:      %d\n", stats.Running)
		fmt.Printf("  Done:         %d\n", stats.Done)
		fmt.Printf("  Failed:       %d\n", stats.Failed)
		fmt.Printf("High priority:  %d\n", stats.HighPriority)
		fmt.Printf("Effectiveness:  %d%%\n", stats.Effectiveness)

		if broken := reg.MissingDependencies(); len(broken) > 0 {
			fmt.Println("Broken dependencies:")
			for id, missing := range broken {
				fmt.Printf("  %s -> %s\n", id, strings.Join(missing, ", "))
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statsCmd)
}
