package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

func exportFixture() workflow.Registry {
	return workflow.Registry{
		{ID: "T-001", Title: "Ingest", Status: workflow.StatusDone, Priority: workflow.PriorityHigh,
			Subtasks:  []workflow.SubTask{{ID: "S1", Title: "Handshake", Completed: true}},
			Artifacts: []workflow.Artifact{{ID: "A-1", Type: workflow.ArtifactJSON, Label: "Config", Content: `{"ok":true}`}}},
		{ID: "T-002", Title: "Publish \"v2\"", Status: workflow.StatusFailed, Priority: workflow.PriorityMedium,
			Dependencies: []string{"T-001"}, Owner: "DevOps_Stream"},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"json", "markdown", "mermaid"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("unknown format must be rejected")
	}
}

func TestRenderJSONRoundTrips(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	out, err := RenderJSON(exportFixture(), "ship v2", now)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var m Manifest
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if m.Mission != "ship v2" {
		t.Errorf("mission lost: %q", m.Mission)
	}
	if !m.Timestamp.Equal(now) {
		t.Errorf("timestamp lost: %v", m.Timestamp)
	}
	if len(m.Tasks) != 2 || m.Tasks[0].Subtasks[0].Title != "Handshake" {
		t.Errorf("tasks did not round-trip: %+v", m.Tasks)
	}
	if m.Stats.Total != 2 || m.Stats.Effectiveness != 50 {
		t.Errorf("stats not embedded: %+v", m.Stats)
	}
}

func TestRenderMarkdownSections(t *testing.T) {
	out := RenderMarkdown(exportFixture(), "ship v2", time.Now())

	for _, want := range []string{
		"# Mission Recap",
		"> ship v2",
		"## Summary",
		"| Effectiveness | 50% |",
		"### T-001",
		"- [x] Handshake",
		"```json",
		"## Blockers",
		"- T-002",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdownNoBlockers(t *testing.T) {
	reg := workflow.Registry{{ID: "T-001", Title: "Ingest", Status: workflow.StatusDone}}
	out := RenderMarkdown(reg, "", time.Now())
	if !strings.Contains(out, "No impediments.") {
		t.Error("all-clear blockers section missing")
	}
	if strings.Contains(out, "> ") {
		t.Error("empty mission should not render a blockquote")
	}
}

func TestRenderMermaid(t *testing.T) {
	out := RenderMermaid(exportFixture())

	if !strings.HasPrefix(out, "graph LR\n") {
		t.Fatalf("diagram must open with graph LR, got %q", out[:20])
	}
	for _, want := range []string{
		`T_001["Ingest"]`,
		"T_001 --> T_002",
		"style T_001 fill:#10b981",
		"style T_002 fill:#ef4444",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("mermaid missing %q", want)
		}
	}
	// Quotes in titles are escaped so the diagram stays parseable.
	if !strings.Contains(out, "#quot;v2#quot;") {
		t.Error("quotes in labels must be escaped")
	}
	// Dashes in ids are sanitized everywhere the id appears.
	if strings.Contains(out, "T-001") {
		t.Error("raw ids must be sanitized in node tokens")
	}
}

func TestRenderDispatch(t *testing.T) {
	now := time.Now()
	reg := exportFixture()

	if out, err := Render(FormatJSON, reg, "m", now); err != nil || !strings.HasPrefix(out, "{") {
		t.Errorf("json dispatch failed: %v", err)
	}
	if out, err := Render(FormatMarkdown, reg, "m", now); err != nil || !strings.HasPrefix(out, "# Mission Recap") {
		t.Errorf("markdown dispatch failed: %v", err)
	}
	if out, err := Render(FormatMermaid, reg, "m", now); err != nil || !strings.HasPrefix(out, "graph LR") {
		t.Errorf("mermaid dispatch failed: %v", err)
	}
	if _, err := Render("yaml", reg, "m", now); err == nil {
		t.Error("unknown format must be rejected")
	}
}
