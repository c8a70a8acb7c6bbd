package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/forgeflow/internal/domain/events"
	"github.com/felixgeelhaar/forgeflow/internal/domain/history"
	"github.com/felixgeelhaar/forgeflow/internal/domain/projection"
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

type stubRepo struct {
	saved    workflow.Registry
	loaded   workflow.Registry
	saveErr  error
	loadErr  error
	saves    int
	missions []string
}

func (r *stubRepo) Initialize() error    { return nil }
func (r *stubRepo) IsInitialized() bool  { return true }
func (r *stubRepo) SaveWorkflow(reg workflow.Registry) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = reg.Clone()
	return nil
}
func (r *stubRepo) LoadWorkflow() (workflow.Registry, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.loaded, nil
}
func (r *stubRepo) SaveMission(prompt string) error {
	r.missions = append(r.missions, prompt)
	return nil
}
func (r *stubRepo) LoadMission() (string, error) { return "", nil }

func newTestService(t *testing.T, initial workflow.Registry) (*WorkflowService, *stubRepo, *Notifier) {
	t.Helper()
	repo := &stubRepo{}
	notifier := NewNotifier()
	return NewWorkflowService(initial, repo, events.NewDispatcher(), notifier), repo, notifier
}

func threeNodePipeline() workflow.Registry {
	return workflow.Registry{
		{ID: "T-001", Title: "Ingest", Status: workflow.StatusDone, Priority: workflow.PriorityHigh, Owner: "A"},
		{ID: "T-002", Title: "Normalize", Status: workflow.StatusRunning, Priority: workflow.PriorityMedium, Dependencies: []string{"T-001"}, Owner: "B"},
		{ID: "T-003", Title: "Publish", Status: workflow.StatusPending, Priority: workflow.PriorityLow, Dependencies: []string{"T-002"}, Owner: "C"},
	}
}

func TestSetStatusPushesHistory(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	svc.SetStatus("T-003", workflow.StatusRunning)

	task, ok := svc.Find("T-003")
	if !ok || task.Status != workflow.StatusRunning {
		t.Fatalf("expected T-003 RUNNING, got %+v", task)
	}
	if length, cursor := svc.Timeline(); length != 2 || cursor != 1 {
		t.Fatalf("expected timeline (2,1), got (%d,%d)", length, cursor)
	}
}

func TestBulkSetStatusTouchesWholeSelection(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	svc.BulkSetStatus(map[string]bool{"T-001": true, "T-002": true, "T-003": true}, workflow.StatusFailed)

	for _, id := range []string{"T-001", "T-002", "T-003"} {
		task, _ := svc.Find(id)
		if task.Status != workflow.StatusFailed {
			t.Errorf("task %s: expected FAILED, got %s", id, task.Status)
		}
	}
	if length, _ := svc.Timeline(); length != 2 {
		t.Errorf("bulk update should push exactly one snapshot, timeline length %d", length)
	}
}

func TestToggleSubtaskIsNotHistorySignificant(t *testing.T) {
	initial := workflow.Registry{
		{ID: "T-001", Title: "Ingest", Status: workflow.StatusRunning, Priority: workflow.PriorityMedium,
			Subtasks: []workflow.SubTask{{ID: "S1", Title: "Handshake", Completed: false}}},
	}
	svc, _, _ := newTestService(t, initial)

	svc.ToggleSubtask("T-001", "S1")

	task, _ := svc.Find("T-001")
	if !task.Subtasks[0].Completed {
		t.Fatal("subtask should be completed after toggle")
	}
	if length, _ := svc.Timeline(); length != 1 {
		t.Errorf("subtask toggle must not push history, timeline length %d", length)
	}

	// Flipping the significance table makes the same operation push.
	svc.SetHistorySignificance(OpToggleSubtask, true)
	svc.ToggleSubtask("T-001", "S1")
	if length, _ := svc.Timeline(); length != 2 {
		t.Errorf("after override, toggle should push history, timeline length %d", length)
	}
}

func TestAddCommentTrimsAndSkipsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	svc.AddComment("T-001", "Operator", "   ")
	if length, _ := svc.Timeline(); length != 1 {
		t.Fatal("blank comment must be a no-op")
	}

	svc.AddComment("T-001", "Operator", "looks good")
	task, _ := svc.Find("T-001")
	if len(task.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(task.Comments))
	}
	if task.Comments[0].ID == "" || task.Comments[0].Timestamp == "" {
		t.Errorf("comment should carry a generated id and timestamp: %+v", task.Comments[0])
	}
}

func TestDeleteDoesNotCascade(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	svc.DeleteTasks(map[string]bool{"T-001": true})

	reg := svc.Registry()
	if len(reg) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(reg))
	}
	task, _ := svc.Find("T-002")
	if len(task.Dependencies) != 1 || task.Dependencies[0] != "T-001" {
		t.Fatalf("dangling reference must survive deletion, got %v", task.Dependencies)
	}
	missing := reg.MissingDependencies()
	if got := missing["T-002"]; len(got) != 1 || got[0] != "T-001" {
		t.Errorf("expected T-002 flagged with broken dep T-001, got %v", missing)
	}
}

func TestInjectDefaultsAndValidation(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	if _, err := svc.Inject(InjectForm{Title: "  "}); !errors.Is(err, workflow.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}

	task, err := svc.Inject(InjectForm{Title: "Archive", Dependencies: "T-003, T-999"})
	if err != nil {
		t.Fatalf("inject: %v", err)
	}
	if task.Status != workflow.StatusPending {
		t.Errorf("injected task must start PENDING, got %s", task.Status)
	}
	if task.Priority != workflow.PriorityMedium {
		t.Errorf("priority should default to MEDIUM, got %s", task.Priority)
	}
	if task.Owner != "Manual_Operator" {
		t.Errorf("owner should default, got %q", task.Owner)
	}
	if len(task.Dependencies) != 2 {
		t.Errorf("dependency list should parse both ids, got %v", task.Dependencies)
	}
	if svc.Registry().Contains(task.ID) == false {
		t.Errorf("injected task %s missing from registry", task.ID)
	}
}

func TestInjectRejectsUnparsablePriority(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())
	if _, err := svc.Inject(InjectForm{Title: "X", Priority: "URGENT"}); err == nil {
		t.Fatal("expected priority parse error")
	}
}

func TestReplaceAllRejectsEmptyAndCycles(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())
	before := svc.Registry()

	if err := svc.ReplaceAll(nil, "ai"); err == nil {
		t.Fatal("empty replacement must be rejected")
	}

	cyclic := []workflow.Task{
		{ID: "A", Title: "a", Status: workflow.StatusPending, Dependencies: []string{"B"}},
		{ID: "B", Title: "b", Status: workflow.StatusPending, Dependencies: []string{"A"}},
	}
	if err := svc.ReplaceAll(cyclic, "ai"); !errors.Is(err, workflow.ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}

	after := svc.Registry()
	if len(after) != len(before) {
		t.Fatal("failed replacement must leave the registry untouched")
	}
}

func TestReplaceAllDefaultsMissingPriority(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	next := []workflow.Task{{ID: "A", Title: "a", Status: workflow.StatusPending}}
	if err := svc.ReplaceAll(next, "ai"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	task, _ := svc.Find("A")
	if task.Priority != workflow.PriorityMedium {
		t.Errorf("expected defaulted MEDIUM priority, got %s", task.Priority)
	}
}

func TestHistoryBoundedAtTwenty(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	for i := 0; i < 30; i++ {
		status := workflow.StatusRunning
		if i%2 == 1 {
			status = workflow.StatusPending
		}
		svc.SetStatus("T-003", status)
	}

	length, cursor := svc.Timeline()
	if length != history.DefaultCap {
		t.Fatalf("timeline must be capped at %d, got %d", history.DefaultCap, length)
	}
	if cursor != length-1 {
		t.Errorf("cursor should sit on latest snapshot, got %d", cursor)
	}

	// Only cap-1 undos are possible from the newest snapshot.
	undos := 0
	for svc.Undo() {
		undos++
	}
	if undos != history.DefaultCap-1 {
		t.Errorf("expected %d undos, got %d", history.DefaultCap-1, undos)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	svc.SetStatus("T-003", workflow.StatusRunning)
	svc.SetPriority("T-003", workflow.PriorityHigh)
	after := svc.Registry()

	if !svc.Undo() || !svc.Undo() {
		t.Fatal("two undos should succeed")
	}
	task, _ := svc.Find("T-003")
	if task.Status != workflow.StatusPending || task.Priority != workflow.PriorityLow {
		t.Fatalf("undo should restore the original node, got %+v", task)
	}
	if svc.Undo() {
		t.Fatal("third undo should fail at the oldest snapshot")
	}

	if !svc.Redo() || !svc.Redo() {
		t.Fatal("two redos should succeed")
	}
	task, _ = svc.Find("T-003")
	if task.Status != after[2].Status || task.Priority != after[2].Priority {
		t.Fatalf("redo should restore the newest snapshot, got %+v", task)
	}
	if svc.Redo() {
		t.Fatal("redo past the newest snapshot should fail")
	}
}

func TestMutationAfterUndoDropsRedoBranch(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	svc.SetStatus("T-003", workflow.StatusRunning)
	svc.SetStatus("T-003", workflow.StatusDone)
	if !svc.Undo() {
		t.Fatal("undo failed")
	}
	svc.SetStatus("T-003", workflow.StatusFailed)

	if svc.CanRedo() {
		t.Fatal("a mutation after undo must truncate the redo branch")
	}
	task, _ := svc.Find("T-003")
	if task.Status != workflow.StatusFailed {
		t.Errorf("expected FAILED, got %s", task.Status)
	}
}

func TestJumpToSeeksTimeline(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	svc.SetStatus("T-003", workflow.StatusRunning)
	svc.SetStatus("T-003", workflow.StatusDone)

	if !svc.JumpTo(0) {
		t.Fatal("jump to origin failed")
	}
	task, _ := svc.Find("T-003")
	if task.Status != workflow.StatusPending {
		t.Errorf("origin snapshot should have PENDING, got %s", task.Status)
	}
	if svc.JumpTo(99) {
		t.Error("jump beyond the timeline must fail")
	}
	if !svc.JumpTo(2) {
		t.Fatal("jump to newest failed")
	}
}

func TestImportTasksRemapsIDsAndIntraImportDeps(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	incoming := []workflow.Task{
		{ID: "gh-1", Title: "Fix login", Owner: "GitHub_Import"},
		{ID: "gh-2", Title: "Fix logout", Dependencies: []string{"gh-1", "gh-999"}, Owner: "GitHub_Import"},
	}
	imported, err := svc.ImportTasks(incoming, "importer")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(imported) != 2 {
		t.Fatalf("expected 2 imported tasks, got %d", len(imported))
	}
	for _, task := range imported {
		if task.ID == "gh-1" || task.ID == "gh-2" {
			t.Errorf("imported id must be remapped, got %s", task.ID)
		}
		if task.Status != workflow.StatusPending {
			t.Errorf("imported task should start PENDING, got %s", task.Status)
		}
	}
	if len(imported[1].Dependencies) != 1 || imported[1].Dependencies[0] != imported[0].ID {
		t.Errorf("only intra-import deps should survive, got %v", imported[1].Dependencies)
	}
	if _, err := svc.ImportTasks(nil, "importer"); err == nil {
		t.Error("empty import must fail")
	}
}

func TestApplyPatchMergesFields(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	desc := "Hardened ingestion with backpressure."
	prio := workflow.PriorityHigh
	svc.ApplyPatch("T-003", workflow.TaskPatch{Description: &desc, Priority: &prio})

	task, _ := svc.Find("T-003")
	if task.Description != desc || task.Priority != prio {
		t.Fatalf("patch not merged: %+v", task)
	}
	if task.Title != "Publish" {
		t.Errorf("unpatched fields must survive, got title %q", task.Title)
	}

	before, _ := svc.Timeline()
	svc.ApplyPatch("T-003", workflow.TaskPatch{})
	if after, _ := svc.Timeline(); after != before {
		t.Error("zero patch must be a no-op")
	}
}

func TestSaveFailureIsNonDestructive(t *testing.T) {
	svc, repo, notifier := newTestService(t, threeNodePipeline())
	repo.saveErr = fmt.Errorf("disk full")

	if err := svc.Save(); err == nil {
		t.Fatal("expected save error")
	}
	if len(svc.Registry()) != 3 {
		t.Fatal("failed save must not touch the registry")
	}
	found := false
	for _, n := range notifier.Active() {
		if n.Kind == NoticeError {
			found = true
		}
	}
	if !found {
		t.Error("failed save should surface an error notice")
	}
}

func TestSaveCountTracksSuccessfulWrites(t *testing.T) {
	svc, repo, _ := newTestService(t, threeNodePipeline())

	if svc.SaveCount() != 0 {
		t.Fatalf("fresh service should report zero saves, got %d", svc.SaveCount())
	}
	if err := svc.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Save(); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if svc.SaveCount() != 2 {
		t.Errorf("expected 2 recorded saves, got %d", svc.SaveCount())
	}

	repo.saveErr = fmt.Errorf("disk full")
	if err := svc.Save(); err == nil {
		t.Fatal("expected save error")
	}
	if svc.SaveCount() != 2 {
		t.Errorf("failed save must not advance the counter, got %d", svc.SaveCount())
	}
}

func TestLoadMissingIsInformational(t *testing.T) {
	svc, repo, notifier := newTestService(t, threeNodePipeline())
	repo.loaded = nil

	if err := svc.Load(); err != nil {
		t.Fatalf("missing blob should not be an error: %v", err)
	}
	if len(svc.Registry()) != 3 {
		t.Fatal("missing blob must leave the registry as it was")
	}
	info := false
	for _, n := range notifier.Active() {
		if n.Kind == NoticeInfo {
			info = true
		}
	}
	if !info {
		t.Error("missing blob should surface an info notice")
	}
}

func TestLoadCorruptLeavesRegistryUntouched(t *testing.T) {
	svc, repo, _ := newTestService(t, threeNodePipeline())
	repo.loadErr = fmt.Errorf("unexpected end of JSON input")

	if err := svc.Load(); err == nil {
		t.Fatal("corrupt blob must be a load error")
	}
	if len(svc.Registry()) != 3 {
		t.Fatal("corrupt blob must leave the in-memory registry untouched")
	}
}

func TestLoadRestoresSavedRegistry(t *testing.T) {
	svc, repo, _ := newTestService(t, threeNodePipeline())
	repo.loaded = workflow.Registry{
		{ID: "R-1", Title: "Restored", Status: workflow.StatusDone, Priority: workflow.PriorityLow},
	}

	if err := svc.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	reg := svc.Registry()
	if len(reg) != 1 || reg[0].ID != "R-1" {
		t.Fatalf("expected restored registry, got %+v", reg)
	}
	if length, _ := svc.Timeline(); length != 2 {
		t.Errorf("restore should push one snapshot, timeline length %d", length)
	}
}

func TestEffectivenessRounding(t *testing.T) {
	reg := workflow.Registry{
		{ID: "1", Title: "a", Status: workflow.StatusDone},
		{ID: "2", Title: "b", Status: workflow.StatusDone},
		{ID: "3", Title: "c", Status: workflow.StatusRunning},
		{ID: "4", Title: "d", Status: workflow.StatusPending},
		{ID: "5", Title: "e", Status: workflow.StatusFailed},
	}
	stats := projection.ComputeStats(reg)
	if stats.Effectiveness != 40 {
		t.Fatalf("expected 40%% effectiveness, got %d", stats.Effectiveness)
	}
	if stats.Total != 5 || stats.Done != 2 || stats.Running != 1 || stats.Pending != 1 || stats.Failed != 1 {
		t.Errorf("unexpected tallies: %+v", stats)
	}
}

func TestRegistryReturnsIsolatedCopy(t *testing.T) {
	svc, _, _ := newTestService(t, threeNodePipeline())

	reg := svc.Registry()
	reg[0].Title = "mutated"
	reg[0].Dependencies = append(reg[0].Dependencies, "X")

	task, _ := svc.Find("T-001")
	if task.Title != "Ingest" || len(task.Dependencies) != 0 {
		t.Fatal("Registry() must return a deep copy")
	}
}
