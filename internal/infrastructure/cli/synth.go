package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var synthCmd = &cobra.Command{
	Use:   "synth [mission prompt]",
	Short: "Synthesize a fresh workflow from a mission prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		prompt := strings.Join(args, " ")

		if err := services.Synthesize(cmd.Context(), prompt); err != nil {
			printNotices(services)
			return MapError(err)
		}

		reg := services.Workflows.Registry()
		fmt.Printf("Workflow synthesized: %d nodes.\n", len(reg))
		for _, t := range reg {
			fmt.Printf("  %-7s %-8s %-8s %s\n", t.ID, t.Status, t.Priority, t.Title)
		}
		printNotices(services)
		return nil
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Rework the current workflow for maximum parallelism",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		if err := services.Generation.OptimizeWorkflow(cmd.Context()); err != nil {
			printNotices(services)
			return MapError(err)
		}
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}
		printNotices(services)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an executive mission report",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		out, err := services.Generation.GenerateReport(cmd.Context(), services.Mission())
		if err != nil {
			printNotices(services)
			return MapError(err)
		}
		fmt.Println(out)
		return nil
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs [task-id]",
	Short: "Generate technical documentation for one node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		out, err := services.Generation.GenerateNodeDocs(cmd.Context(), args[0])
		if err != nil {
			printNotices(services)
			return MapError(err)
		}
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}
		fmt.Println(out)
		return nil
	},
}

var refineCmd = &cobra.Command{
	Use:   "refine [text]",
	Short: "Tighten a piece of technical prose",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		out, err := services.Generation.QuickRefine(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return MapError(err)
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(synthCmd)
	RootCmd.AddCommand(optimizeCmd)
	RootCmd.AddCommand(reportCmd)
	RootCmd.AddCommand(docsCmd)
	RootCmd.AddCommand(refineCmd)
}
