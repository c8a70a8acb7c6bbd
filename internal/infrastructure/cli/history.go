package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the snapshot timeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		length, cursor := services.Workflows.Timeline()
		fmt.Printf("Timeline: %d snapshot(s), cursor at %d\n", length, cursor)
		for i := 0; i < length; i++ {
			marker := " "
			if i == cursor {
				marker = "*"
			}
			fmt.Printf(" %s %d\n", marker, i)
		}
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Step back one snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		if !services.Workflows.Undo() {
			return fmt.Errorf("nothing to undo")
		}
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}
		_, cursor := services.Workflows.Timeline()
		fmt.Printf("Rolled back to snapshot %d.\n", cursor)
		return nil
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Step forward one snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		if !services.Workflows.Redo() {
			return fmt.Errorf("nothing to redo")
		}
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}
		_, cursor := services.Workflows.Timeline()
		fmt.Printf("Advanced to snapshot %d.\n", cursor)
		return nil
	},
}

var jumpCmd = &cobra.Command{
	Use:   "jump [index]",
	Short: "Seek directly to a timeline index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		if !services.Workflows.JumpTo(index) {
			length, _ := services.Workflows.Timeline()
			return fmt.Errorf("index %d out of range (timeline has %d snapshots)", index, length)
		}
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}
		fmt.Printf("Jumped to snapshot %d.\n", index)
		return nil
	},
}

func init() {
	historyCmd.AddCommand(undoCmd)
	historyCmd.AddCommand(redoCmd)
	historyCmd.AddCommand(jumpCmd)
	RootCmd.AddCommand(historyCmd)
}
