package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forgeflow/internal/domain/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the workflow as json, markdown or mermaid",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return MapError(err)
		}

		out, err := export.Render(format, services.Workflows.Registry(), services.Mission(), time.Now())
		if err != nil {
			return MapError(err)
		}

		if exportOut != "" {
			if err := os.WriteFile(exportOut, []byte(out), 0600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Printf("Exported %s to %s.\n", format, exportOut)
			return nil
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json, markdown or mermaid")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to a file instead of stdout")
	RootCmd.AddCommand(exportCmd)
}
