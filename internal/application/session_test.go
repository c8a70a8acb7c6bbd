package application

import (
	"testing"
	"time"
)

func TestSessionSingleSelectOpensSidebar(t *testing.T) {
	s := NewSession()

	s.Select("T-001", false)
	if got := s.Selected(); len(got) != 1 || got[0] != "T-001" {
		t.Fatalf("expected sole selection T-001, got %v", got)
	}
	if !s.SidebarOpen() {
		t.Error("single select should open the inspector")
	}

	// A second single select replaces, never accumulates.
	s.Select("T-002", false)
	if got := s.Selected(); len(got) != 1 || got[0] != "T-002" {
		t.Fatalf("expected selection replaced by T-002, got %v", got)
	}
}

func TestSessionMultiSelectToggles(t *testing.T) {
	s := NewSession()

	s.Select("T-001", true)
	s.Select("T-002", true)
	if got := s.Selected(); len(got) != 2 {
		t.Fatalf("expected 2 selected, got %v", got)
	}
	if _, ok := s.PrimarySelected(); ok {
		t.Error("primary selection is undefined with 2 ids selected")
	}

	s.Select("T-001", true)
	if got := s.Selected(); len(got) != 1 || got[0] != "T-002" {
		t.Fatalf("re-click should deselect, got %v", got)
	}
	if id, ok := s.PrimarySelected(); !ok || id != "T-002" {
		t.Errorf("expected primary T-002, got %q %v", id, ok)
	}
}

func TestSessionRetainDropsStaleIDs(t *testing.T) {
	s := NewSession()
	s.Select("T-001", true)
	s.Select("T-002", true)

	s.Retain(map[string]bool{"T-002": true})

	if got := s.Selected(); len(got) != 1 || got[0] != "T-002" {
		t.Fatalf("expected only surviving id, got %v", got)
	}
	if set := s.SelectedSet(); set["T-001"] {
		t.Error("stale id left in selection set")
	}
}

func TestSessionClearSelection(t *testing.T) {
	s := NewSession()
	s.Select("T-001", false)
	s.ClearSelection()

	if len(s.Selected()) != 0 {
		t.Error("selection should be empty after clear")
	}
	if s.SidebarOpen() {
		t.Error("clearing the selection closes the inspector")
	}
}

func TestNotifierExpiresOnRead(t *testing.T) {
	clock := time.Now()
	n := NewNotifierWithTTL(50*time.Millisecond, func() time.Time { return clock })

	n.Notify(NoticeSuccess, "saved")
	if got := n.Active(); len(got) != 1 {
		t.Fatalf("expected 1 active notice, got %d", len(got))
	}

	clock = clock.Add(100 * time.Millisecond)
	if got := n.Active(); len(got) != 0 {
		t.Fatalf("expected notice expired, got %d", len(got))
	}
}

func TestNotifierDismiss(t *testing.T) {
	n := NewNotifier()
	notice := n.Notify(NoticeError, "boom")
	n.Notify(NoticeInfo, "fyi")

	n.Dismiss(notice.ID)

	active := n.Active()
	if len(active) != 1 || active[0].Kind != NoticeInfo {
		t.Fatalf("expected only the info notice, got %+v", active)
	}
}
