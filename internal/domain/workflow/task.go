package workflow

import (
	"fmt"
	"time"
)

// ArtifactType classifies a generated output attached to a task.
type ArtifactType string

const (
	ArtifactCode ArtifactType = "code"
	ArtifactLog  ArtifactType = "log"
	ArtifactJSON ArtifactType = "json"
	ArtifactLink ArtifactType = "link"
)

// IsValid returns true if the artifact type is known.
func (t ArtifactType) IsValid() bool {
	switch t {
	case ArtifactCode, ArtifactLog, ArtifactJSON, ArtifactLink:
		return true
	default:
		return false
	}
}

// SubTask is a small checklist item owned by a single task, independently
// completable.
type SubTask struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Comment is an append-only log entry on a task.
type Comment struct {
	ID        string `json:"id" yaml:"id"`
	Author    string `json:"author" yaml:"author"`
	Text      string `json:"text" yaml:"text"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// Artifact is a generated output attached to a task.
type Artifact struct {
	ID      string       `json:"id" yaml:"id"`
	Type    ArtifactType `json:"type" yaml:"type"`
	Label   string       `json:"label" yaml:"label"`
	Content string       `json:"content" yaml:"content"`
}

// Task is a node in the workflow dependency graph.
type Task struct {
	ID           string     `json:"id" yaml:"id"`
	Title        string     `json:"title" yaml:"title"`
	Description  string     `json:"description" yaml:"description"`
	Status       Status     `json:"status" yaml:"status"`
	Priority     Priority   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Dependencies []string   `json:"dependencies" yaml:"dependencies"`
	Owner        string     `json:"owner,omitempty" yaml:"owner,omitempty"`
	Duration     string     `json:"duration,omitempty" yaml:"duration,omitempty"`
	LastUpdated  *time.Time `json:"lastUpdated,omitempty" yaml:"last_updated,omitempty"`
	Subtasks     []SubTask  `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
	Comments     []Comment  `json:"comments,omitempty" yaml:"comments,omitempty"`
	Artifacts    []Artifact `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

// Clone returns a deep copy of the task. History snapshots rely on clones
// being fully detached from the source.
func (t Task) Clone() Task {
	c := t
	if t.Dependencies != nil {
		c.Dependencies = append([]string(nil), t.Dependencies...)
	}
	if t.Subtasks != nil {
		c.Subtasks = append([]SubTask(nil), t.Subtasks...)
	}
	if t.Comments != nil {
		c.Comments = append([]Comment(nil), t.Comments...)
	}
	if t.Artifacts != nil {
		c.Artifacts = append([]Artifact(nil), t.Artifacts...)
	}
	if t.LastUpdated != nil {
		ts := *t.LastUpdated
		c.LastUpdated = &ts
	}
	return c
}

// DependsOn returns true if the task lists depID as a dependency.
func (t Task) DependsOn(depID string) bool {
	for _, d := range t.Dependencies {
		if d == depID {
			return true
		}
	}
	return false
}

// SubtaskProgress reports checklist completion for the task. A DONE task
// always reports full progress regardless of its checklist.
type SubtaskProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// Progress computes the subtask completion ratio.
func (t Task) Progress() SubtaskProgress {
	if t.Status == StatusDone {
		done := 0
		for _, s := range t.Subtasks {
			if s.Completed {
				done++
			}
		}
		return SubtaskProgress{Completed: done, Total: len(t.Subtasks), Percent: 100}
	}
	if len(t.Subtasks) == 0 {
		return SubtaskProgress{}
	}
	done := 0
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return SubtaskProgress{
		Completed: done,
		Total:     len(t.Subtasks),
		Percent:   roundPercent(done, len(t.Subtasks)),
	}
}

// Validate checks the minimal structural requirements for a task coming in
// from an external source (AI synthesis, imports, manual injection).
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("task %s: title is required", t.ID)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("task %s: %w: %s", t.ID, ErrInvalidStatus, t.Status)
	}
	if t.Priority != "" && !t.Priority.IsValid() {
		return fmt.Errorf("task %s: invalid priority: %s", t.ID, t.Priority)
	}
	return nil
}

func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(part)/float64(total)*100 + 0.5)
}
