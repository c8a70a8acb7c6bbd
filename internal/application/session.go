package application

import "sync"

// Session is the explicit application-state struct replacing the scattered
// view flags of the original shell: one place for the selection set, the
// active prompt and the open-panel toggles, mutated only through named
// transitions.
type Session struct {
	mu           sync.RWMutex
	selected     []string
	selectedSet  map[string]bool
	prompt       string
	sidebarOpen  bool
	lassoEnabled bool
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{selectedSet: make(map[string]bool)}
}

// Select handles a task click. In multi-select mode the id toggles in and
// out of the selection; otherwise it becomes the sole selection and the
// inspector opens.
func (s *Session) Select(taskID string, multi bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !multi {
		s.selected = []string{taskID}
		s.selectedSet = map[string]bool{taskID: true}
		s.sidebarOpen = true
		return
	}
	if s.selectedSet[taskID] {
		delete(s.selectedSet, taskID)
		kept := s.selected[:0]
		for _, id := range s.selected {
			if id != taskID {
				kept = append(kept, id)
			}
		}
		s.selected = kept
		return
	}
	s.selectedSet[taskID] = true
	s.selected = append(s.selected, taskID)
}

// ClearSelection empties the selection set.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.selectedSet = make(map[string]bool)
	s.sidebarOpen = false
}

// Selected returns the selected ids in click order.
func (s *Session) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out
}

// SelectedSet returns the selection as a set, the shape bulk mutations take.
func (s *Session) SelectedSet() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.selectedSet))
	for id := range s.selectedSet {
		out[id] = true
	}
	return out
}

// PrimarySelected returns the sole selected id when exactly one task is
// selected.
func (s *Session) PrimarySelected() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.selected) == 1 {
		return s.selected[0], true
	}
	return "", false
}

// Retain drops selected ids that no longer exist in the registry, guarding
// against stale selections after deletions or a full replace.
func (s *Session) Retain(existing map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.selected[:0]
	for _, id := range s.selected {
		if existing[id] {
			kept = append(kept, id)
		} else {
			delete(s.selectedSet, id)
		}
	}
	s.selected = kept
}

// SetPrompt stores the mission prompt text.
func (s *Session) SetPrompt(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = p
}

// Prompt returns the mission prompt text.
func (s *Session) Prompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prompt
}

// ToggleLasso flips lasso selection mode.
func (s *Session) ToggleLasso() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lassoEnabled = !s.lassoEnabled
	return s.lassoEnabled
}

// SidebarOpen reports whether the inspector panel is open.
func (s *Session) SidebarOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebarOpen
}

// CloseSidebar closes the inspector panel.
func (s *Session) CloseSidebar() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebarOpen = false
}
