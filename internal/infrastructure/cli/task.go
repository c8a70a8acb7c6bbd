package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/forgeflow/internal/application"
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect and mutate individual nodes",
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show one node in full",
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

		fmt.Printf("%s  %s\n", task.ID, task.Title)
		fmt.Printf("  Status:   %s (%s)\n", task.Status, task.Status.DisplayName())
		fmt.Printf("  Priority: %s\n", task.Priority)
		if task.Owner != "" {
			fmt.Printf("  Owner:    %s\n", task.Owner)
		}
		if len(task.Dependencies) > 0 {
			fmt.Printf("  Deps:     %s\n", strings.Join(task.Dependencies, ", "))
		}
		if task.Description != "" {
			fmt.Printf("  Spec:     %s\n", task.Description)
		}
		progress := task.Progress()
		if progress.Total > 0 {
			fmt.Printf("  Checklist: %d/%d (%d%%)\n", progress.Completed, progress.Total, progress.Percent)
			for _, s := range task.Subtasks {
				mark := " "
				if s.Completed {
					mark = "x"
				}
				fmt.Printf("    [%s] %s %s\n", mark, s.ID, s.Title)
			}
		}
		for _, c := range task.Comments {
			fmt.Printf("  > %s (%s): %s\n", c.Author, c.Timestamp, c.Text)
		}
		for _, a := range task.Artifacts {
			fmt.Printf("  * artifact %s [%s] %s\n", a.ID, a.Type, a.Label)
		}
		return nil
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status [task-id] [status]",
	Short: "Set a node's status (PENDING, RUNNING, DONE, FAILED)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		status, err := workflow.ParseStatus(strings.ToUpper(args[1]))
		if err != nil {
			return MapError(err)
		}
		if _, ok := services.Workflows.Find(args[0]); !ok {
			return fmt.Errorf("task %s not found", args[0])
		}
		services.Workflows.SetStatus(args[0], status)
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}
		fmt.Printf("Task %s is now %s.\n", args[0], status)
		return nil
	},
}

var taskPriorityCmd = &cobra.Command{
	Use:   "priority [task-id] [priority]",
	Short: "Set a node's priority (LOW, MEDIUM, HIGH)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		prio, err := workflow.ParsePriority(strings.ToUpper(args[1]))
		if err != nil {
			return MapError(err)
		}
		if _, ok := services.Workflows.Find(args[0]); !ok {
			return fmt.Errorf("task %s not found", args[0])
		}
		services.Workflows.SetPriority(args[0], prio)
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}
		fmt.Printf("Task %s priority set to %s.\n", args[0], prio)
		return nil
	},
}

var (
	injectTitle string
	injectDesc  string
	injectPrio  string
	injectDeps  string
	injectOwner string
)

var taskInjectCmd = &cobra.Command{
	Use:   "inject",
	Short: "Manually inject a node into the graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		task, err := services.Workflows.Inject(application.InjectForm{
			Title:        injectTitle,
			Description:  injectDesc,
			Priority:     strings.ToUpper(injectPrio),
			Dependencies: injectDeps,
			Owner:        injectOwner,
		})
		if err != nil {
			return MapError(err)
		}
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}
		fmt.Printf("Injected %s: %s\n", task.ID, task.Title)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [task-id...]",
	Short: "Delete nodes (dependents keep a broken-dependency badge)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		ids := make(map[string]bool, len(args))
		for _, id := range args {
			ids[id] = true
		}
		services.Workflows.DeleteTasks(ids)
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}

		broken := services.Workflows.Registry().MissingDependencies()
		fmt.Printf("Deleted %d node(s).\n", len(args))
		for id, missing := range broken {
			fmt.Printf("  %s now has broken dependencies: %s\n", id, strings.Join(missing, ", "))
		}
		return nil
	},
}

var taskCommentCmd = &cobra.Command{
	Use:   "comment [task-id] [text]",
	Short: "Append a registry log entry to a node",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		if _, ok := services.Workflows.Find(args[0]); !ok {
			return fmt.Errorf("task %s not found", args[0])
		}
		services.Workflows.AddComment(args[0], commentAuthor(), strings.Join(args[1:], " "))
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}
		return nil
	},
}

var taskToggleCmd = &cobra.Command{
	Use:   "toggle [task-id] [subtask-id]",
	Short: "Flip one checklist item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		services.Workflows.ToggleSubtask(args[0], args[1])
		if err := services.Workflows.Save(); err != nil {
			return MapError(err)
		}
		return nil
	},
}

var taskEnhanceCmd = &cobra.Command{
	Use:   "enhance [task-id]",
	Short: "Let the architect refine a node's prose and metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		if err := services.Generation.EnhanceTask(cmd.Context(), args[0]); err != nil {
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

var taskSubtasksCmd = &cobra.Command{
	Use:   "subtasks [task-id]",
	Short: "Generate a fresh checklist for a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		if err := services.Generation.GenerateSubtasks(cmd.Context(), args[0]); err != nil {
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

func init() {
	taskInjectCmd.Flags().StringVarP(&injectTitle, "title", "t", "", "Node title (required)")
	taskInjectCmd.Flags().StringVarP(&injectDesc, "desc", "d", "", "Technical description")
	taskInjectCmd.Flags().StringVar(&injectPrio, "priority", "", "LOW, MEDIUM or HIGH (default MEDIUM)")
	taskInjectCmd.Flags().StringVar(&injectDeps, "deps", "", "Comma-separated dependency ids")
	taskInjectCmd.Flags().StringVar(&injectOwner, "owner", "", "Owning agent")
	_ = taskInjectCmd.MarkFlagRequired("title")

	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskStatusCmd)
	taskCmd.AddCommand(taskPriorityCmd)
	taskCmd.AddCommand(taskInjectCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskCommentCmd)
	taskCmd.AddCommand(taskToggleCmd)
	taskCmd.AddCommand(taskEnhanceCmd)
	taskCmd.AddCommand(taskSubtasksCmd)
	RootCmd.AddCommand(taskCmd)
}
