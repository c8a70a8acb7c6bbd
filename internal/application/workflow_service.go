package application

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/forgeflow/internal/domain"
	"github.com/felixgeelhaar/forgeflow/internal/domain/events"
	"github.com/felixgeelhaar/forgeflow/internal/domain/history"
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

// Op names a mutation operation for the history-significance table.
type Op string

const (
	OpSetStatus     Op = "set_status"
	OpSetPriority   Op = "set_priority"
	OpToggleSubtask Op = "toggle_subtask"
	OpComment       Op = "comment"
	OpDelete        Op = "delete"
	OpInject        Op = "inject"
	OpReplace       Op = "replace"
	OpPatch         Op = "patch"
	OpSubtasks      Op = "subtasks"
	OpArtifact      Op = "artifact"
)

// DefaultHistorySignificance marks which operations push a history snapshot.
// Subtask toggles are treated as a local UI refinement and do not; everything
// else does.
func DefaultHistorySignificance() map[Op]bool {
	return map[Op]bool{
		OpSetStatus:     true,
		OpSetPriority:   true,
		OpToggleSubtask: false,
		OpComment:       true,
		OpDelete:        true,
		OpInject:        true,
		OpReplace:       true,
		OpPatch:         true,
		OpSubtasks:      true,
		OpArtifact:      true,
	}
}

// InjectForm carries the manual task creation fields. Dependencies is the
// raw comma-separated id string from the form.
type InjectForm struct {
	Title        string
	Description  string
	Priority     string
	Dependencies string
	Owner        string
}

// WorkflowService owns the canonical registry and its history. Mutation and
// history push execute as one atomic step under the service lock; projections
// read a cloned snapshot.
type WorkflowService struct {
	mu          sync.Mutex
	registry    workflow.Registry
	hist        *history.Stack
	idgen       *workflow.IDGenerator
	repo        domain.WorkspaceRepository
	dispatcher  *events.Dispatcher
	notifier    *Notifier
	significant map[Op]bool
	now         func() time.Time

	// saves counts successful workflow writes so watchers can tell our
	// own disk activity apart from external edits.
	saves atomic.Uint64
}

// NewWorkflowService seeds a service with an initial registry.
func NewWorkflowService(initial workflow.Registry, repo domain.WorkspaceRepository, dispatcher *events.Dispatcher, notifier *Notifier) *WorkflowService {
	return &WorkflowService{
		registry:    initial.Clone(),
		hist:        history.NewStack(initial),
		idgen:       workflow.NewIDGenerator(initial.IDs()...),
		repo:        repo,
		dispatcher:  dispatcher,
		notifier:    notifier,
		significant: DefaultHistorySignificance(),
		now:         time.Now,
	}
}

// SetHistorySignificance overrides whether an operation pushes history.
func (s *WorkflowService) SetHistorySignificance(op Op, significant bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.significant[op] = significant
}

// Registry returns a copy of the current registry.
func (s *WorkflowService) Registry() workflow.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Clone()
}

// Find returns a copy of one task.
func (s *WorkflowService) Find(id string) (workflow.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.registry.Find(id)
	return t, ok
}

// commit installs the mutated registry, pushing history when the operation
// is significant, and emits the event. Caller holds the lock.
func (s *WorkflowService) commit(op Op, next workflow.Registry, e events.Event) {
	s.registry = next
	if s.significant[op] {
		s.hist.Push(next)
	}
	s.idgen.Observe(next.IDs()...)
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(e)
	}
}

// SetStatus updates one task's status.
func (s *WorkflowService) SetStatus(id string, status workflow.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpSetStatus, s.registry.SetStatus(id, status, s.now()),
		events.New(events.TypeTaskUpdated, "operator", map[string]interface{}{"task": id, "status": status.String()}))
}

// BulkSetStatus applies a status to the whole selection.
func (s *WorkflowService) BulkSetStatus(ids map[string]bool, status workflow.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpSetStatus, s.registry.BulkSetStatus(ids, status, s.now()),
		events.New(events.TypeTaskUpdated, "operator", map[string]interface{}{"count": len(ids), "status": status.String()}))
}

// SetPriority updates one task's priority.
func (s *WorkflowService) SetPriority(id string, p workflow.Priority) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpSetPriority, s.registry.SetPriority(id, p),
		events.New(events.TypeTaskUpdated, "operator", map[string]interface{}{"task": id, "priority": p.String()}))
}

// BulkSetPriority applies a priority to the whole selection.
func (s *WorkflowService) BulkSetPriority(ids map[string]bool, p workflow.Priority) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpSetPriority, s.registry.BulkSetPriority(ids, p),
		events.New(events.TypeTaskUpdated, "operator", map[string]interface{}{"count": len(ids), "priority": p.String()}))
}

// ToggleSubtask flips one checklist item. Not history-significant by
// default.
func (s *WorkflowService) ToggleSubtask(taskID, subtaskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpToggleSubtask, s.registry.ToggleSubtask(taskID, subtaskID),
		events.New(events.TypeTaskUpdated, "operator", map[string]interface{}{"task": taskID, "subtask": subtaskID}))
}

// AddComment appends a registry log entry. Empty text after trimming is a
// no-op and pushes nothing.
func (s *WorkflowService) AddComment(taskID, author, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := workflow.Comment{
		ID:        workflow.NewCommentID(),
		Author:    author,
		Text:      text,
		Timestamp: s.now().Format(time.RFC3339),
	}
	s.commit(OpComment, s.registry.AppendComment(taskID, c),
		events.New(events.TypeCommentAdded, author, map[string]interface{}{"task": taskID}))
}

// DeleteTasks removes the selection. Surviving dependency references are
// intentionally left dangling; the projections flag them as broken.
func (s *WorkflowService) DeleteTasks(ids map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpDelete, s.registry.DeleteTasks(ids),
		events.New(events.TypeTasksDeleted, "operator", map[string]interface{}{"count": len(ids)}))
}

// Inject constructs a task from the manual form and appends it. The new
// task starts PENDING with a fresh collision-checked id; a dependency list
// that would close a cycle is rejected.
func (s *WorkflowService) Inject(form InjectForm) (workflow.Task, error) {
	if strings.TrimSpace(form.Title) == "" {
		return workflow.Task{}, workflow.ErrEmptyTitle
	}
	prio, err := workflow.ParsePriority(form.Priority)
	if err != nil {
		return workflow.Task{}, err
	}
	owner := form.Owner
	if owner == "" {
		owner = "Manual_Operator"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task := workflow.Task{
		ID:           s.idgen.NextTaskID(),
		Title:        strings.TrimSpace(form.Title),
		Description:  strings.TrimSpace(form.Description),
		Status:       workflow.StatusPending,
		Priority:     prio,
		Dependencies: workflow.ParseDependencyList(form.Dependencies),
		Owner:        owner,
		Subtasks:     []workflow.SubTask{},
	}

	next := s.registry.Append(task)
	if err := next.ValidateDAG(); err != nil {
		return workflow.Task{}, err
	}

	s.commit(OpInject, next,
		events.New(events.TypeTaskInjected, owner, map[string]interface{}{"task": task.ID}))
	return task, nil
}

// ReplaceAll swaps the registry wholesale, the semantics of AI synthesis.
// An empty set is rejected so a failed generation can never wipe state;
// a cyclic set is rejected rather than silently accepted.
func (s *WorkflowService) ReplaceAll(tasks []workflow.Task, actor string) error {
	return s.replace(tasks, actor, events.TypeWorkflowReplaced)
}

// ApplyOptimized installs an optimized task set, distinguished from plain
// synthesis so tests and event consumers can tell the two apart.
func (s *WorkflowService) ApplyOptimized(tasks []workflow.Task, actor string) error {
	return s.replace(tasks, actor, events.TypeWorkflowOptimized)
}

func (s *WorkflowService) replace(tasks []workflow.Task, actor, eventType string) error {
	if len(tasks) == 0 {
		return fmt.Errorf("refusing to replace workflow with an empty task set")
	}
	next := workflow.Registry(tasks).Clone()
	for i := range next {
		if next[i].Priority == "" {
			next[i].Priority = workflow.PriorityMedium
		}
		if err := next[i].Validate(); err != nil {
			return err
		}
	}
	if err := next.ValidateDAG(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpReplace, next,
		events.New(eventType, actor, map[string]interface{}{"count": len(next)}))
	return nil
}

// ImportTasks appends externally sourced tasks as one snapshot. Each task
// gets a fresh id; imported dependency references are kept only when they
// point at another imported task.
func (s *WorkflowService) ImportTasks(tasks []workflow.Task, actor string) ([]workflow.Task, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("nothing to import")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idMap := make(map[string]string, len(tasks))
	imported := make([]workflow.Task, 0, len(tasks))
	for _, t := range tasks {
		fresh := t.Clone()
		newID := s.idgen.NextTaskID()
		idMap[t.ID] = newID
		fresh.ID = newID
		if fresh.Status == "" {
			fresh.Status = workflow.StatusPending
		}
		fresh.Priority = fresh.Priority.OrDefault()
		if err := fresh.Validate(); err != nil {
			return nil, err
		}
		imported = append(imported, fresh)
	}
	for i := range imported {
		deps := imported[i].Dependencies[:0]
		for _, d := range tasks[i].Dependencies {
			if mapped, ok := idMap[d]; ok {
				deps = append(deps, mapped)
			}
		}
		imported[i].Dependencies = deps
	}

	next := s.registry.Clone()
	for _, t := range imported {
		next = next.Append(t)
	}
	if err := next.ValidateDAG(); err != nil {
		return nil, err
	}

	s.commit(OpInject, next,
		events.New(events.TypeTaskInjected, actor, map[string]interface{}{"count": len(imported)}))
	return imported, nil
}

// ApplyPatch merges a partial enhancement into one task.
func (s *WorkflowService) ApplyPatch(taskID string, p workflow.TaskPatch) {
	if p.IsZero() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpPatch, s.registry.ApplyPatch(taskID, p),
		events.New(events.TypeTaskUpdated, "ai", map[string]interface{}{"task": taskID, "patch": true}))
}

// ReplaceSubtasks swaps one task's checklist, used after subtask generation.
func (s *WorkflowService) ReplaceSubtasks(taskID string, subs []workflow.SubTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpSubtasks, s.registry.ReplaceSubtasks(taskID, subs),
		events.New(events.TypeTaskUpdated, "ai", map[string]interface{}{"task": taskID, "subtasks": len(subs)}))
}

// AppendArtifact attaches a generated output to a task.
func (s *WorkflowService) AppendArtifact(taskID string, a workflow.Artifact) {
	if a.ID == "" {
		a.ID = workflow.NewArtifactID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpArtifact, s.registry.AppendArtifact(taskID, a),
		events.New(events.TypeTaskUpdated, "ai", map[string]interface{}{"task": taskID, "artifact": a.ID}))
}

// Undo steps back one snapshot.
func (s *WorkflowService) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.hist.Undo()
	if ok {
		s.registry = snap
		s.seekEvent()
	}
	return ok
}

// Redo steps forward one snapshot.
func (s *WorkflowService) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.hist.Redo()
	if ok {
		s.registry = snap
		s.seekEvent()
	}
	return ok
}

// JumpTo seeks directly to a timeline index.
func (s *WorkflowService) JumpTo(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.hist.JumpTo(index)
	if ok {
		s.registry = snap
		s.seekEvent()
	}
	return ok
}

func (s *WorkflowService) seekEvent() {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(events.New(events.TypeHistorySeek, "operator",
			map[string]interface{}{"cursor": s.hist.Cursor()}))
	}
}

// Timeline reports the history extent and cursor for the scrubber.
func (s *WorkflowService) Timeline() (length, cursor int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Len(), s.hist.Cursor()
}

// CanUndo reports whether an older snapshot exists.
func (s *WorkflowService) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether a newer snapshot exists.
func (s *WorkflowService) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// Save overwrites the persisted workflow blob unconditionally. Storage
// failures become notifications, never panics, and leave memory untouched.
func (s *WorkflowService) Save() error {
	s.mu.Lock()
	snapshot := s.registry.Clone()
	s.mu.Unlock()

	if err := s.repo.SaveWorkflow(snapshot); err != nil {
		s.notifyError("Failed to write to local registry.")
		s.dispatchFailure(events.TypeStorageFailed, err)
		return fmt.Errorf("save workflow: %w", err)
	}
	s.saves.Add(1)
	if s.notifier != nil {
		s.notifier.Notify(NoticeSuccess, "Orchestration snapshot saved to local registry.")
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(events.New(events.TypeWorkflowSaved, "operator", nil))
	}
	return nil
}

// SaveCount reports how many workflow writes have landed on disk.
func (s *WorkflowService) SaveCount() uint64 {
	return s.saves.Load()
}

// Load restores the persisted workflow. A missing blob is informational; a
// corrupt one is a load error and the in-memory registry stays as it was.
func (s *WorkflowService) Load() error {
	loaded, err := s.repo.LoadWorkflow()
	if err != nil {
		s.notifyError("Corruption detected in local manifest.")
		s.dispatchFailure(events.TypeStorageFailed, err)
		return fmt.Errorf("load workflow: %w", err)
	}
	if loaded == nil {
		if s.notifier != nil {
			s.notifier.Notify(NoticeInfo, "No local manifest found in storage.")
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpReplace, loaded,
		events.New(events.TypeWorkflowLoaded, "operator", map[string]interface{}{"count": len(loaded)}))
	if s.notifier != nil {
		s.notifier.Notify(NoticeSuccess, "Local orchestration manifest restored.")
	}
	return nil
}

func (s *WorkflowService) notifyError(msg string) {
	if s.notifier != nil {
		s.notifier.Notify(NoticeError, msg)
	}
}

func (s *WorkflowService) dispatchFailure(eventType string, err error) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(events.New(eventType, "system",
			map[string]interface{}{"error": err.Error()}))
	}
}
