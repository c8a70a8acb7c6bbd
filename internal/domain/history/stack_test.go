package history

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

func snapshot(n int) workflow.Registry {
	return workflow.Registry{
		{ID: fmt.Sprintf("T-%03d", n), Title: fmt.Sprintf("node %d", n), Status: workflow.StatusPending},
	}
}

func TestStackStartsWithSeed(t *testing.T) {
	s := NewStack(snapshot(0))

	if s.Len() != 1 || s.Cursor() != 0 {
		t.Fatalf("expected (len=1, cursor=0), got (%d, %d)", s.Len(), s.Cursor())
	}
	if s.CanUndo() || s.CanRedo() {
		t.Error("fresh stack can move in neither direction")
	}
	if got := s.Current(); got[0].ID != "T-000" {
		t.Errorf("unexpected seed snapshot: %v", got[0].ID)
	}
}

func TestStackUndoRedo(t *testing.T) {
	s := NewStack(snapshot(0))
	s.Push(snapshot(1))
	s.Push(snapshot(2))

	reg, ok := s.Undo()
	if !ok || reg[0].ID != "T-001" {
		t.Fatalf("undo: got (%v, %v)", reg[0].ID, ok)
	}
	reg, ok = s.Undo()
	if !ok || reg[0].ID != "T-000" {
		t.Fatalf("second undo: got (%v, %v)", reg[0].ID, ok)
	}
	if _, ok := s.Undo(); ok {
		t.Fatal("undo past the oldest entry must fail")
	}

	reg, ok = s.Redo()
	if !ok || reg[0].ID != "T-001" {
		t.Fatalf("redo: got (%v, %v)", reg[0].ID, ok)
	}
	reg, ok = s.Redo()
	if !ok || reg[0].ID != "T-002" {
		t.Fatalf("second redo: got (%v, %v)", reg[0].ID, ok)
	}
	if _, ok := s.Redo(); ok {
		t.Fatal("redo past the newest entry must fail")
	}
}

func TestStackPushTruncatesRedoBranch(t *testing.T) {
	s := NewStack(snapshot(0))
	s.Push(snapshot(1))
	s.Push(snapshot(2))
	s.Undo()
	s.Undo()

	s.Push(snapshot(9))

	if s.CanRedo() {
		t.Fatal("push after undo must drop the redo branch")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 entries after truncation, got %d", s.Len())
	}
	if got := s.Current(); got[0].ID != "T-009" {
		t.Errorf("cursor should sit on the new snapshot, got %v", got[0].ID)
	}
}

func TestStackDropsOldestBeyondCap(t *testing.T) {
	s := NewStackWithCap(snapshot(0), 3)
	for i := 1; i <= 10; i++ {
		s.Push(snapshot(i))
	}

	if s.Len() != 3 {
		t.Fatalf("expected capped length 3, got %d", s.Len())
	}
	// Oldest surviving entry is snapshot 8.
	reg, _ := s.JumpTo(0)
	if reg[0].ID != "T-008" {
		t.Errorf("expected oldest survivor T-008, got %v", reg[0].ID)
	}
	if s.Cursor() != 0 {
		t.Errorf("jump should move the cursor, got %d", s.Cursor())
	}
}

func TestStackJumpToBounds(t *testing.T) {
	s := NewStack(snapshot(0))
	s.Push(snapshot(1))

	if _, ok := s.JumpTo(-1); ok {
		t.Error("negative index must fail")
	}
	if _, ok := s.JumpTo(2); ok {
		t.Error("index past the end must fail")
	}
	if _, ok := s.JumpTo(0); !ok {
		t.Error("in-range jump must succeed")
	}
}

func TestStackSnapshotsAreIsolated(t *testing.T) {
	seed := snapshot(0)
	s := NewStack(seed)
	seed[0].Title = "mutated after seed"

	if got := s.Current(); got[0].Title != "node 0" {
		t.Fatal("stack must clone on push")
	}

	current := s.Current()
	current[0].Title = "mutated after read"
	if got := s.Current(); got[0].Title != "node 0" {
		t.Fatal("stack must clone on read")
	}
}

func TestStackPropertyBoundAndCursorValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capSize := rapid.IntRange(1, 25).Draw(rt, "cap")
		s := NewStackWithCap(snapshot(0), capSize)

		ops := rapid.IntRange(0, 100).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				s.Push(snapshot(i + 1))
			case 1:
				s.Undo()
			case 2:
				s.Redo()
			case 3:
				s.JumpTo(rapid.IntRange(-1, capSize).Draw(rt, "idx"))
			}

			if s.Len() < 1 || s.Len() > capSize {
				rt.Fatalf("length %d outside [1, %d]", s.Len(), capSize)
			}
			if s.Cursor() < 0 || s.Cursor() >= s.Len() {
				rt.Fatalf("cursor %d outside timeline of length %d", s.Cursor(), s.Len())
			}
			// Current must never panic and always returns an entry.
			if s.Current() == nil {
				rt.Fatal("current snapshot is nil")
			}
		}
	})
}

func TestStackPropertyUndoRedoRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewStack(snapshot(0))
		pushes := rapid.IntRange(1, 19).Draw(rt, "pushes")
		for i := 1; i <= pushes; i++ {
			s.Push(snapshot(i))
		}

		before := s.Current()
		if _, ok := s.Undo(); !ok {
			rt.Fatal("undo should succeed with history present")
		}
		after, ok := s.Redo()
		if !ok {
			rt.Fatal("redo should succeed after undo")
		}
		if before[0].ID != after[0].ID {
			rt.Fatalf("undo+redo must round-trip: %v vs %v", before[0].ID, after[0].ID)
		}
	})
}
