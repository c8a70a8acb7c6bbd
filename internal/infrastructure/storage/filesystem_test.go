package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

func TestResolvePath_Traversal(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())

	if _, err := repo.ResolvePath("../escape.json"); err == nil {
		t.Error("expected traversal to be rejected")
	}
	if _, err := repo.ResolvePath("nested/file.json"); err == nil {
		t.Error("expected nested path to be rejected")
	}
	if _, err := repo.ResolvePath(""); err == nil {
		t.Error("expected empty filename to be rejected")
	}
	if _, err := repo.ResolvePath("workflow.json"); err != nil {
		t.Errorf("expected direct child to resolve, got %v", err)
	}
}

func TestWorkflowRoundTrip(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !repo.IsInitialized() {
		t.Fatal("expected workspace to be initialized")
	}

	reg := workflow.Seed()
	if err := repo.SaveWorkflow(reg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.LoadWorkflow()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != len(reg) {
		t.Fatalf("expected %d tasks, got %d", len(reg), len(loaded))
	}
	if loaded[0].ID != reg[0].ID || loaded[0].Status != reg[0].Status {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded[0], reg[0])
	}
}

func TestLoadWorkflow_Missing(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	loaded, err := repo.LoadWorkflow()
	if err != nil {
		t.Fatalf("missing workflow should not be an error, got %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil registry for missing file, got %v", loaded)
	}
}

func TestLoadWorkflow_Corrupt(t *testing.T) {
	root := t.TempDir()
	repo := NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	path := filepath.Join(root, ForgeflowDir, WorkflowFile)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write corrupt blob: %v", err)
	}

	if _, err := repo.LoadWorkflow(); err == nil {
		t.Error("expected error for corrupt workflow blob")
	}
}

func TestMissionRoundTrip(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	mission, err := repo.LoadMission()
	if err != nil {
		t.Fatalf("missing mission should not be an error, got %v", err)
	}
	if mission != "" {
		t.Errorf("expected empty mission, got %q", mission)
	}

	if err := repo.SaveMission("deploy a zero-trust CI/CD pipeline"); err != nil {
		t.Fatalf("save mission: %v", err)
	}
	mission, err = repo.LoadMission()
	if err != nil {
		t.Fatalf("load mission: %v", err)
	}
	if mission != "deploy a zero-trust CI/CD pipeline" {
		t.Errorf("unexpected mission: %q", mission)
	}
}
