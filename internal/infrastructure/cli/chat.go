package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [task-id]",
	Short: "Talk to the agent owning a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		task, ok := services.Workflows.Find(args[0])
		if !ok {
			return fmt.Errorf("task %s not found", args[0])
		}

		owner := task.Owner
		if owner == "" {
			owner = "Nexus_Automaton"
		}
		fmt.Printf("%s: Synthesizer online. Ready to assist with node operations.\n", owner)
		fmt.Println("(empty line to exit)")

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				return nil
			}

			reply, err := services.Generation.ChatWithNode(cmd.Context(), args[0], line)
			if err != nil {
				fmt.Println("Transmission interrupted.")
				continue
			}
			fmt.Printf("%s: %s\n", owner, reply)
		}
	},
}

func init() {
	RootCmd.AddCommand(chatCmd)
}
