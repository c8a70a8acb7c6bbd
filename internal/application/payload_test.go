package application

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

func TestExtractJSONPayload(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare array", `[{"id":"1"}]`, `[{"id":"1"}]`},
		{"json fence", "```json\n[{\"id\":\"1\"}]\n```", `[{"id":"1"}]`},
		{"plain fence", "```\n{\"id\":\"1\"}\n```", `{"id":"1"}`},
		{"leading prose", "Here is your workflow:\n[{\"id\":\"1\"}]", `[{"id":"1"}]`},
		{"trailing prose", `{"id":"1"} Let me know if you need more.`, `{"id":"1"}`},
		{"object before array text", `{"tasks": [1, 2]}`, `{"tasks": [1, 2]}`},
		{"whitespace only", "   \n  ", ""},
		{"no json at all", "I cannot help with that.", "I cannot help with that."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONPayload(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTaskArrayValidatesSchema(t *testing.T) {
	// Missing required title on the second element.
	_, err := parseTaskArray(`[{"id": "1", "title": "a"}, {"id": "2"}]`)
	if err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("expected schema validation error, got %v", err)
	}
}

func TestParseTaskArrayFillsDefaults(t *testing.T) {
	tasks, err := parseTaskArray(`[{"id": "1", "title": "a", "status": "", "subtasks": [{"title": "step"}]}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tasks[0].Status != workflow.StatusPending {
		t.Errorf("blank status should decode as PENDING, got %s", tasks[0].Status)
	}
	if tasks[0].Dependencies == nil {
		t.Error("dependencies should never be nil")
	}
	if tasks[0].Subtasks[0].ID == "" {
		t.Error("subtask without id should receive one")
	}
}

func TestParseTaskArrayRejectsEmpty(t *testing.T) {
	if _, err := parseTaskArray("[]"); err == nil {
		t.Error("empty array must be rejected")
	}
	if _, err := parseTaskArray(""); err == nil {
		t.Error("empty string must be rejected")
	}
	if _, err := parseTaskArray("not json"); err == nil {
		t.Error("prose must be rejected")
	}
}

func TestParseSubtaskListForcesUnchecked(t *testing.T) {
	subs, err := parseSubtaskList(`[{"title": "a", "completed": true}, {"id": "S9", "title": "b"}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if subs[0].Completed {
		t.Error("generated subtasks must start unchecked")
	}
	if subs[0].ID == "" {
		t.Error("missing subtask id should be generated")
	}
	if subs[1].ID != "S9" {
		t.Errorf("existing id should be kept, got %q", subs[1].ID)
	}
}

func TestParseEnhancement(t *testing.T) {
	patch, err := parseEnhancement("```json\n{\"description\": \"Better.\", \"priority\": \"high\"}\n```")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if patch.Description == nil || *patch.Description != "Better." {
		t.Errorf("description not parsed: %+v", patch)
	}
	if patch.Priority == nil || *patch.Priority != workflow.PriorityHigh {
		t.Errorf("priority should be upcased, got %+v", patch.Priority)
	}
	if patch.Title != nil {
		t.Error("absent fields must stay nil")
	}
}

func TestParseEnhancementRejectsUnknownPriorityAlone(t *testing.T) {
	if _, err := parseEnhancement(`{"priority": "ASAP"}`); err == nil {
		t.Error("a patch with only an invalid priority carries nothing usable")
	}
}

func TestParseEnhancementRejectsEmptyObject(t *testing.T) {
	if _, err := parseEnhancement("{}"); err == nil {
		t.Error("empty enhancement must be rejected")
	}
}
