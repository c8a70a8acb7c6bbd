// Package history provides bounded linear undo/redo over full registry
// snapshots.
package history

import (
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

// DefaultCap bounds the number of retained snapshots. Full-snapshot history
// grows quickly in a long editing session, so the tail is dropped.
const DefaultCap = 20

// Stack is a linear undo/redo timeline of registry snapshots. It is never
// empty: it is seeded with the initial registry at construction, and the
// cursor always points at a valid entry.
type Stack struct {
	entries []workflow.Registry
	cursor  int
	cap     int
}

// NewStack seeds a history stack with the initial registry state.
func NewStack(initial workflow.Registry) *Stack {
	return NewStackWithCap(initial, DefaultCap)
}

// NewStackWithCap seeds a stack with a custom snapshot bound. A bound below
// one falls back to the default.
func NewStackWithCap(initial workflow.Registry, max int) *Stack {
	if max < 1 {
		max = DefaultCap
	}
	return &Stack{
		entries: []workflow.Registry{initial.Clone()},
		cursor:  0,
		cap:     max,
	}
}

// Push records a new snapshot. Any redo branch beyond the cursor is
// discarded, and the oldest entries are dropped once the bound is exceeded.
func (s *Stack) Push(r workflow.Registry) {
	s.entries = append(s.entries[:s.cursor+1], r.Clone())
	if len(s.entries) > s.cap {
		s.entries = s.entries[len(s.entries)-s.cap:]
	}
	s.cursor = len(s.entries) - 1
}

// Undo steps the cursor back and returns that snapshot. At the oldest entry
// it returns the current snapshot and false.
func (s *Stack) Undo() (workflow.Registry, bool) {
	if s.cursor == 0 {
		return s.Current(), false
	}
	s.cursor--
	return s.Current(), true
}

// Redo steps the cursor forward and returns that snapshot. At the newest
// entry it returns the current snapshot and false.
func (s *Stack) Redo() (workflow.Registry, bool) {
	if s.cursor >= len(s.entries)-1 {
		return s.Current(), false
	}
	s.cursor++
	return s.Current(), true
}

// JumpTo seeks directly to an index on the timeline, used by the scrubber.
func (s *Stack) JumpTo(index int) (workflow.Registry, bool) {
	if index < 0 || index >= len(s.entries) {
		return s.Current(), false
	}
	s.cursor = index
	return s.Current(), true
}

// Current returns a copy of the snapshot under the cursor.
func (s *Stack) Current() workflow.Registry {
	return s.entries[s.cursor].Clone()
}

// CanUndo reports whether an older snapshot exists.
func (s *Stack) CanUndo() bool { return s.cursor > 0 }

// CanRedo reports whether a newer snapshot exists.
func (s *Stack) CanRedo() bool { return s.cursor < len(s.entries)-1 }

// Len returns the number of retained snapshots.
func (s *Stack) Len() int { return len(s.entries) }

// Cursor returns the current timeline position.
func (s *Stack) Cursor() int { return s.cursor }
