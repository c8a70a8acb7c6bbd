package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/forgeflow/internal/application"
	"github.com/felixgeelhaar/forgeflow/internal/domain/export"
	"github.com/felixgeelhaar/forgeflow/internal/domain/projection"
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/wiring"
)

// Server exposes the orchestration workspace to MCP clients over
// stdio, HTTP, or WebSocket transports.
type Server struct {
	mcpServer *mcp.Server
	services  *wiring.AppServices
	root      string
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
// Internal details are omitted; only the friendly message is returned.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

func NewServer(root string) (*Server, error) {
	services, err := wiring.BuildAppServices(root)
	if err != nil {
		return nil, fmt.Errorf("build services: %w", err)
	}

	info := mcp.ServerInfo{
		Name:    "forgeflow",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Forgeflow MCP Server"),
			mcp.WithDescription("Forgeflow exposes the orchestration workflow, projections, and generation operations to MCP clients."),
			mcp.WithWebsiteURL("https://github.com/felixgeelhaar/forgeflow"),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use tools to inspect the workflow, mutate node state, synthesize or optimize the graph, and export a manifest."),
		),
		services: services,
		root:     root,
	}

	s.registerTools()
	return s, nil
}

type SynthesizeArgs struct {
	Prompt string `json:"prompt" jsonschema:"description=High-level mission directive to decompose into a workflow"`
}

type TaskStatusArgs struct {
	TaskID string `json:"task_id" jsonschema:"description=The ID of the node to update"`
	Status string `json:"status" jsonschema:"description=New status: PENDING, RUNNING, DONE or FAILED"`
}

type TaskPriorityArgs struct {
	TaskID   string `json:"task_id" jsonschema:"description=The ID of the node to update"`
	Priority string `json:"priority" jsonschema:"description=New priority: LOW, MEDIUM or HIGH"`
}

type InjectArgs struct {
	Title        string `json:"title" jsonschema:"description=Title of the new node"`
	Description  string `json:"description,omitempty" jsonschema:"description=Optional description"`
	Priority     string `json:"priority,omitempty" jsonschema:"description=Priority: LOW, MEDIUM or HIGH (default MEDIUM)"`
	Dependencies string `json:"dependencies,omitempty" jsonschema:"description=Comma-separated IDs of upstream nodes"`
	Owner        string `json:"owner,omitempty" jsonschema:"description=Agent owner label"`
}

type DeleteArgs struct {
	TaskIDs []string `json:"task_ids" jsonschema:"description=IDs of the nodes to purge"`
}

type CommentArgs struct {
	TaskID string `json:"task_id" jsonschema:"description=The ID of the node to annotate"`
	Author string `json:"author" jsonschema:"description=Comment author label"`
	Text   string `json:"text" jsonschema:"description=Comment body"`
}

type TaskArgs struct {
	TaskID string `json:"task_id" jsonschema:"description=The ID of the node"`
}

type ExportArgs struct {
	Format string `json:"format,omitempty" jsonschema:"description=Manifest format: json, markdown or mermaid (default json)"`
}

type JumpArgs struct {
	Index int `json:"index" jsonschema:"description=Zero-based timeline index to restore"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("forgeflow_get_workflow").
		Description("Retrieve the full task registry with subtasks, comments, and artifacts").
		UIResource("ui://forgeflow/workflow").
		Handler(s.handleGetWorkflow)

	s.mcpServer.Tool("forgeflow_get_stats").
		Description("Retrieve aggregate workflow statistics including effectiveness and broken dependencies").
		UIResource("ui://forgeflow/stats").
		Handler(s.handleGetStats)

	s.mcpServer.Tool("forgeflow_get_board").
		Description("Retrieve the kanban board projection of the workflow").
		UIResource("ui://forgeflow/board").
		Handler(s.handleGetBoard)

	s.mcpServer.Tool("forgeflow_synthesize").
		Description("Generate a fresh workflow from a mission directive, replacing the current registry").
		Handler(s.handleSynthesize)

	s.mcpServer.Tool("forgeflow_optimize").
		Description("Restructure the current workflow for maximum parallelism").
		Handler(s.handleOptimize)

	s.mcpServer.Tool("forgeflow_set_status").
		Description("Transition a node to a new execution status").
		Handler(s.handleSetStatus)

	s.mcpServer.Tool("forgeflow_set_priority").
		Description("Change the priority of a node").
		Handler(s.handleSetPriority)

	s.mcpServer.Tool("forgeflow_inject").
		Description("Manually inject a new node into the workflow").
		Handler(s.handleInject)

	s.mcpServer.Tool("forgeflow_delete").
		Description("Purge nodes from the workflow without cascading to dependents").
		Handler(s.handleDelete)

	s.mcpServer.Tool("forgeflow_comment").
		Description("Append a comment to a node").
		Handler(s.handleComment)

	s.mcpServer.Tool("forgeflow_enhance").
		Description("Enrich a node's description, priority, and dependencies via the AI provider").
		Handler(s.handleEnhance)

	s.mcpServer.Tool("forgeflow_subtasks").
		Description("Generate an actionable subtask checklist for a node").
		Handler(s.handleSubtasks)

	s.mcpServer.Tool("forgeflow_report").
		Description("Generate a mission status report from the current workflow").
		Handler(s.handleReport)

	s.mcpServer.Tool("forgeflow_export").
		Description("Export the workflow manifest as JSON, Markdown, or a Mermaid diagram").
		Handler(s.handleExport)

	s.mcpServer.Tool("forgeflow_undo").
		Description("Step the workflow back one snapshot in the timeline").
		Handler(s.handleUndo)

	s.mcpServer.Tool("forgeflow_redo").
		Description("Step the workflow forward one snapshot in the timeline").
		Handler(s.handleRedo)

	s.mcpServer.Tool("forgeflow_jump").
		Description("Restore the workflow to an arbitrary timeline snapshot").
		Handler(s.handleJump)

	s.mcpServer.Tool("forgeflow_save").
		Description("Persist the current workflow to the local registry").
		Handler(s.handleSave)
}

func (s *Server) handleGetWorkflow(ctx context.Context, args struct{}) (any, error) {
	return s.services.Workflows.Registry(), nil
}

func (s *Server) handleGetStats(ctx context.Context, args struct{}) (any, error) {
	return projection.ComputeStats(s.services.Workflows.Registry()), nil
}

func (s *Server) handleGetBoard(ctx context.Context, args struct{}) (any, error) {
	return projection.ComputeBoard(s.services.Workflows.Registry()), nil
}

func (s *Server) handleSynthesize(ctx context.Context, args SynthesizeArgs) (string, error) {
	if strings.TrimSpace(args.Prompt) == "" {
		return "", mcpErr("A mission directive is required to synthesize a workflow.")
	}
	if err := s.services.Synthesize(ctx, args.Prompt); err != nil {
		return "", mcpErr("Workflow synthesis failed. Check the AI provider configuration.")
	}
	reg := s.services.Workflows.Registry()
	return fmt.Sprintf("Workflow synthesized with %d nodes", len(reg)), nil
}

func (s *Server) handleOptimize(ctx context.Context, args struct{}) (string, error) {
	if err := s.services.Generation.OptimizeWorkflow(ctx); err != nil {
		return "", mcpErr("Workflow optimization failed. Ensure a workflow exists and the AI provider is reachable.")
	}
	return "Workflow optimized for parallelism", nil
}

func (s *Server) handleSetStatus(ctx context.Context, args TaskStatusArgs) (string, error) {
	status, err := workflow.ParseStatus(strings.ToUpper(args.Status))
	if err != nil {
		return "", mcpErr("Unknown status. Use PENDING, RUNNING, DONE, or FAILED.")
	}
	if _, ok := s.services.Workflows.Find(args.TaskID); !ok {
		return "", mcpErr(fmt.Sprintf("Node %s not found in the workflow.", args.TaskID))
	}
	s.services.Workflows.SetStatus(args.TaskID, status)
	return fmt.Sprintf("Node %s transitioned to %s", args.TaskID, status), nil
}

func (s *Server) handleSetPriority(ctx context.Context, args TaskPriorityArgs) (string, error) {
	p, err := workflow.ParsePriority(strings.ToUpper(args.Priority))
	if err != nil {
		return "", mcpErr("Unknown priority. Use LOW, MEDIUM, or HIGH.")
	}
	if _, ok := s.services.Workflows.Find(args.TaskID); !ok {
		return "", mcpErr(fmt.Sprintf("Node %s not found in the workflow.", args.TaskID))
	}
	s.services.Workflows.SetPriority(args.TaskID, p)
	return fmt.Sprintf("Node %s priority set to %s", args.TaskID, p), nil
}

func (s *Server) handleInject(ctx context.Context, args InjectArgs) (string, error) {
	task, err := s.services.Workflows.Inject(application.InjectForm{
		Title:        args.Title,
		Description:  args.Description,
		Priority:     args.Priority,
		Dependencies: args.Dependencies,
		Owner:        args.Owner,
	})
	if err != nil {
		return "", mcpErr("Node injection failed. A title is required and dependencies must not form a cycle.")
	}
	return fmt.Sprintf("Node %s injected: %s", task.ID, task.Title), nil
}

func (s *Server) handleDelete(ctx context.Context, args DeleteArgs) (string, error) {
	if len(args.TaskIDs) == 0 {
		return "", mcpErr("At least one node ID is required.")
	}
	ids := make(map[string]bool, len(args.TaskIDs))
	for _, id := range args.TaskIDs {
		ids[id] = true
	}
	s.services.Workflows.DeleteTasks(ids)
	return fmt.Sprintf("Purged %d node(s)", len(ids)), nil
}

func (s *Server) handleComment(ctx context.Context, args CommentArgs) (string, error) {
	if _, ok := s.services.Workflows.Find(args.TaskID); !ok {
		return "", mcpErr(fmt.Sprintf("Node %s not found in the workflow.", args.TaskID))
	}
	author := args.Author
	if author == "" {
		author = "MCP_Client"
	}
	s.services.Workflows.AddComment(args.TaskID, author, args.Text)
	return fmt.Sprintf("Comment appended to node %s", args.TaskID), nil
}

func (s *Server) handleEnhance(ctx context.Context, args TaskArgs) (string, error) {
	if err := s.services.Generation.EnhanceTask(ctx, args.TaskID); err != nil {
		return "", mcpErr("Node enhancement failed. Ensure the node exists and the AI provider is reachable.")
	}
	return fmt.Sprintf("Node %s enhanced", args.TaskID), nil
}

func (s *Server) handleSubtasks(ctx context.Context, args TaskArgs) (string, error) {
	if err := s.services.Generation.GenerateSubtasks(ctx, args.TaskID); err != nil {
		return "", mcpErr("Subtask generation failed. Ensure the node exists and the AI provider is reachable.")
	}
	return fmt.Sprintf("Subtasks generated for node %s", args.TaskID), nil
}

func (s *Server) handleReport(ctx context.Context, args struct{}) (string, error) {
	report, err := s.services.Generation.GenerateReport(ctx, s.services.Mission())
	if err != nil {
		return "", mcpErr("Report generation failed. Ensure the AI provider is reachable.")
	}
	return report, nil
}

func (s *Server) handleExport(ctx context.Context, args ExportArgs) (string, error) {
	format := args.Format
	if format == "" {
		format = "json"
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return "", mcpErr("Unknown format. Use json, markdown, or mermaid.")
	}
	out, err := export.Render(f, s.services.Workflows.Registry(), s.services.Mission(), time.Now())
	if err != nil {
		return "", mcpErr("Manifest export failed.")
	}
	return out, nil
}

func (s *Server) handleUndo(ctx context.Context, args struct{}) (string, error) {
	if !s.services.Workflows.Undo() {
		return "", mcpErr("Nothing to undo. The timeline cursor is at the oldest snapshot.")
	}
	return "Workflow restored to the previous snapshot", nil
}

func (s *Server) handleRedo(ctx context.Context, args struct{}) (string, error) {
	if !s.services.Workflows.Redo() {
		return "", mcpErr("Nothing to redo. The timeline cursor is at the latest snapshot.")
	}
	return "Workflow advanced to the next snapshot", nil
}

func (s *Server) handleJump(ctx context.Context, args JumpArgs) (string, error) {
	if !s.services.Workflows.JumpTo(args.Index) {
		return "", mcpErr("Invalid timeline index.")
	}
	return fmt.Sprintf("Workflow restored to timeline snapshot %d", args.Index), nil
}

func (s *Server) handleSave(ctx context.Context, args struct{}) (string, error) {
	if err := s.services.Workflows.Save(); err != nil {
		return "", mcpErr("Failed to write to the local registry. Check directory permissions.")
	}
	return "Workflow persisted to the local registry", nil
}

func (s *Server) Start() error {
	return s.StartStdio()
}

func (s *Server) StartStdio() error {
	return s.ServeStdio(context.Background())
}

func (s *Server) StartHTTP(addr string) error {
	return s.ServeHTTP(context.Background(), addr)
}

func (s *Server) StartWebSocket(addr string) error {
	return s.ServeWebSocket(context.Background(), addr)
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}
