package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/felixgeelhaar/forgeflow/internal/domain/ai"
	"github.com/felixgeelhaar/forgeflow/internal/domain/events"
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

const architectSystemPrompt = "You are a world-class Lead Orchestrator Architect. You design high-performance directed acyclic task graphs and return only JSON when asked for JSON."

// GenerationService drives every model round-trip. All failure modes are
// non-destructive: a bad response leaves the workflow exactly as it was and
// surfaces a single error notification.
type GenerationService struct {
	workflows  *WorkflowService
	provider   ai.Provider
	notifier   *Notifier
	dispatcher *events.Dispatcher
	gate       *generationGate

	// token invalidates slow mutating responses: a result is applied to
	// the registry only if no newer mutating generation started while it
	// was in flight.
	token atomic.Uint64
}

func NewGenerationService(workflows *WorkflowService, provider ai.Provider, notifier *Notifier, dispatcher *events.Dispatcher) (*GenerationService, error) {
	gate, err := newGenerationGate()
	if err != nil {
		return nil, err
	}
	return &GenerationService{
		workflows:  workflows,
		provider:   provider,
		notifier:   notifier,
		dispatcher: dispatcher,
		gate:       gate,
	}, nil
}

// Busy reports whether any generation is in flight.
func (s *GenerationService) Busy() bool {
	return s.gate.BusyAny()
}

// BusyAt reports whether the given call site has a request in flight.
func (s *GenerationService) BusyAt(op GenerationOp) bool {
	return s.gate.Busy(op)
}

func (s *GenerationService) begin(op GenerationOp) (uint64, error) {
	if err := s.gate.Acquire(op); err != nil {
		return 0, err
	}
	if op.mutatesRegistry() {
		return s.token.Add(1), nil
	}
	return s.token.Load(), nil
}

func (s *GenerationService) stillCurrent(tok uint64) bool {
	return s.token.Load() == tok
}

func (s *GenerationService) fail(msg string, err error) error {
	if s.notifier != nil {
		s.notifier.Notify(NoticeError, msg)
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(events.New(events.TypeGenerationFailed, "ai",
			map[string]interface{}{"error": err.Error()}))
	}
	return err
}

func (s *GenerationService) complete(ctx context.Context, prompt, system string, maxTokens int) (string, error) {
	resp, err := s.provider.Complete(ctx, ai.CompletionRequest{
		Prompt:      prompt,
		System:      system,
		Temperature: 0.2,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// SynthesizeWorkflow generates a fresh task graph from a mission prompt and
// replaces the registry wholesale. An empty or unparseable response changes
// nothing.
func (s *GenerationService) SynthesizeWorkflow(ctx context.Context, prompt string) error {
	tok, err := s.begin(GenSynthesize)
	if err != nil {
		return err
	}
	defer s.gate.Release(GenSynthesize)

	fullPrompt := fmt.Sprintf(`Act as a world-class Lead Orchestrator Architect. Your task is to design a high-performance Directed Acyclic Graph (DAG) for the following infrastructure request: %q.

Requirements:
- 6 to 10 logical nodes.
- Each node must have an owner (agent style: Security_Kernel, Logic_Unit, DevOps_Stream, etc).
- Clear and logical dependencies (don't create circular links).
- 3 to 5 granular subtasks per node.
- Professional, punchy titles and technical descriptions.
- Strategic priorities (LOW, MEDIUM, HIGH).

Return ONLY a JSON array of task objects with fields id, title, description, status, dependencies, owner, priority and subtasks. Status must be one of PENDING, RUNNING, DONE, FAILED. No surrounding text, no code fences.`, prompt)

	text, err := s.complete(ctx, fullPrompt, architectSystemPrompt, 4000)
	if err != nil {
		return s.fail("Neural synthesis failed. Workflow unchanged.", err)
	}

	tasks, err := parseTaskArray(text)
	if err != nil {
		return s.fail("Neural synthesis returned an unreadable manifest. Workflow unchanged.", err)
	}
	if !s.stillCurrent(tok) {
		return nil
	}
	if err := s.workflows.ReplaceAll(tasks, "ai"); err != nil {
		return s.fail("Synthesized graph was rejected. Workflow unchanged.", err)
	}
	if s.notifier != nil {
		s.notifier.Notify(NoticeSuccess, fmt.Sprintf("Workflow synthesized: %d nodes online.", len(tasks)))
	}
	return nil
}

// OptimizeWorkflow asks the model to rework the current graph for
// parallelism. On any failure the existing tasks stay in place.
func (s *GenerationService) OptimizeWorkflow(ctx context.Context) error {
	tok, err := s.begin(GenOptimize)
	if err != nil {
		return err
	}
	defer s.gate.Release(GenOptimize)

	current := s.workflows.Registry()
	payload, err := json.Marshal(current)
	if err != nil {
		return s.fail("Optimization aborted.", err)
	}

	prompt := fmt.Sprintf(`Analyze this DAG workflow and optimize it for maximum parallelism and efficiency.
You can:
- Re-order dependencies to reduce bottlenecks.
- Refine priorities based on dependency chains.
- Optimize node titles and descriptions for technical clarity.

Return ONLY the full optimized JSON array of task objects. No surrounding text, no code fences.

Current Workflow: %s`, payload)

	text, err := s.complete(ctx, prompt, architectSystemPrompt, 4000)
	if err != nil {
		return s.fail("Optimization pass failed. Workflow unchanged.", err)
	}

	tasks, err := parseTaskArray(text)
	if err != nil {
		return s.fail("Optimizer returned an unreadable manifest. Workflow unchanged.", err)
	}
	if !s.stillCurrent(tok) {
		return nil
	}
	if err := s.workflows.ApplyOptimized(tasks, "ai"); err != nil {
		return s.fail("Optimized graph was rejected. Workflow unchanged.", err)
	}
	if s.notifier != nil {
		s.notifier.Notify(NoticeSuccess, "Workflow optimized for parallelism.")
	}
	return nil
}

// EnhanceTask refines one task's prose and metadata, merging the result as
// a field-level patch.
func (s *GenerationService) EnhanceTask(ctx context.Context, taskID string) error {
	task, ok := s.workflows.Find(taskID)
	if !ok {
		return fmt.Errorf("task %s not found", taskID)
	}
	tok, err := s.begin(GenEnhance)
	if err != nil {
		return err
	}
	defer s.gate.Release(GenEnhance)

	prompt := fmt.Sprintf(`Refine this orchestration node for technical clarity and punch:
Title: %s
Description: %s
Priority: %s

Return ONLY a JSON object with any of the fields title, description, priority, owner, duration that you improved. Omit fields you leave unchanged. No code fences.`,
		task.Title, task.Description, task.Priority)

	text, err := s.complete(ctx, prompt, architectSystemPrompt, 1000)
	if err != nil {
		return s.fail("Node enhancement failed.", err)
	}
	patch, err := parseEnhancement(text)
	if err != nil {
		return s.fail("Enhancement response was unreadable.", err)
	}
	if !s.stillCurrent(tok) {
		return nil
	}
	if _, ok := s.workflows.Find(taskID); !ok {
		// Node deleted while the call was in flight.
		return nil
	}
	s.workflows.ApplyPatch(taskID, patch)
	if s.notifier != nil {
		s.notifier.Notify(NoticeSuccess, fmt.Sprintf("Node %s enhanced.", taskID))
	}
	return nil
}

// GenerateSubtasks replaces one task's checklist with a generated breakdown.
func (s *GenerationService) GenerateSubtasks(ctx context.Context, taskID string) error {
	task, ok := s.workflows.Find(taskID)
	if !ok {
		return fmt.Errorf("task %s not found", taskID)
	}
	tok, err := s.begin(GenSubtasks)
	if err != nil {
		return err
	}
	defer s.gate.Release(GenSubtasks)

	prompt := fmt.Sprintf(`Break this orchestration node into 3 to 5 granular subtasks:
Title: %s
Spec: %s

Return ONLY a JSON array of objects with fields id, title and completed (always false). No code fences.`,
		task.Title, task.Description)

	text, err := s.complete(ctx, prompt, architectSystemPrompt, 1000)
	if err != nil {
		return s.fail("Subtask generation failed.", err)
	}
	subs, err := parseSubtaskList(text)
	if err != nil {
		return s.fail("Subtask response was unreadable.", err)
	}
	if !s.stillCurrent(tok) {
		return nil
	}
	if _, ok := s.workflows.Find(taskID); !ok {
		return nil
	}
	s.workflows.ReplaceSubtasks(taskID, subs)
	if s.notifier != nil {
		s.notifier.Notify(NoticeSuccess, fmt.Sprintf("Checklist generated for %s.", taskID))
	}
	return nil
}

// GenerateReport produces an executive markdown summary of the workflow.
func (s *GenerationService) GenerateReport(ctx context.Context, mission string) (string, error) {
	if _, err := s.begin(GenReport); err != nil {
		return "", err
	}
	defer s.gate.Release(GenReport)

	payload, err := json.Marshal(s.workflows.Registry())
	if err != nil {
		return "", s.fail("Report generation aborted.", err)
	}

	prompt := fmt.Sprintf(`Provide an executive summary and architectural analysis of the following workflow designed for: %q.
Analyze:
1. Critical path nodes.
2. Dependency health.
3. Potential resource bottlenecks.
Workflow: %s
Use professional markdown formatting.`, mission, payload)

	text, err := s.complete(ctx, prompt, architectSystemPrompt, 2000)
	if err != nil {
		return "", s.fail("Mission report generation failed.", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", s.fail("Mission report came back empty.", fmt.Errorf("empty response"))
	}
	return text, nil
}

// GenerateNodeDocs produces technical documentation for one node and
// attaches it as a log artifact.
func (s *GenerationService) GenerateNodeDocs(ctx context.Context, taskID string) (string, error) {
	task, ok := s.workflows.Find(taskID)
	if !ok {
		return "", fmt.Errorf("task %s not found", taskID)
	}
	tok, err := s.begin(GenDocs)
	if err != nil {
		return "", err
	}
	defer s.gate.Release(GenDocs)

	subs, err := json.Marshal(task.Subtasks)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(`Generate professional technical documentation for this orchestration node:
Node ID: %s
Title: %s
Spec: %s
Priority: %s
Subtasks: %s

Format as Markdown with sections for 'Architecture', 'Operational Procedure', and 'Risk Assessment'.`,
		task.ID, task.Title, task.Description, task.Priority, subs)

	text, err := s.complete(ctx, prompt, architectSystemPrompt, 2000)
	if err != nil {
		return "", s.fail("Documentation generation failed.", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", s.fail("Documentation came back empty.", fmt.Errorf("empty response"))
	}
	if s.stillCurrent(tok) {
		s.workflows.AppendArtifact(taskID, workflow.Artifact{
			Type:    workflow.ArtifactLog,
			Label:   fmt.Sprintf("Docs: %s", task.Title),
			Content: text,
		})
	}
	return text, nil
}

// ChatWithNode answers an operator message in the voice of the node's
// owning agent.
func (s *GenerationService) ChatWithNode(ctx context.Context, taskID, userMessage string) (string, error) {
	task, ok := s.workflows.Find(taskID)
	if !ok {
		return "", fmt.Errorf("task %s not found", taskID)
	}
	if _, err := s.begin(GenChat); err != nil {
		return "", err
	}
	defer s.gate.Release(GenChat)

	owner := task.Owner
	if owner == "" {
		owner = "Nexus_Automaton"
	}
	system := fmt.Sprintf(`You are the specialized AI agent: %q. You own the system node: %q (Status: %s).
Objective: Answer technical questions or process instructions related to this node. Be concise, professional, and technical.`,
		owner, task.Title, task.Status)

	text, err := s.complete(ctx, userMessage, system, 1000)
	if err != nil {
		return "", s.fail("Transmission interrupted.", err)
	}
	if strings.TrimSpace(text) == "" {
		return "Transmission interrupted.", nil
	}
	return text, nil
}

// QuickRefine tightens a short piece of technical text. On failure the
// input is returned untouched.
func (s *GenerationService) QuickRefine(ctx context.Context, text string) (string, error) {
	if _, err := s.begin(GenRefine); err != nil {
		return text, err
	}
	defer s.gate.Release(GenRefine)

	prompt := fmt.Sprintf("Professionalize this technical text to be more concise and punchy: %q. Return only the refined text.", text)
	refined, err := s.complete(ctx, prompt, "", 500)
	if err != nil {
		return text, s.fail("Quick refine failed.", err)
	}
	refined = strings.TrimSpace(refined)
	if refined == "" {
		return text, nil
	}
	return refined, nil
}
