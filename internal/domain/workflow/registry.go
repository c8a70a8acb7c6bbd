package workflow

import (
	"strings"
	"time"
)

// Registry is the ordered collection of tasks. It is the single source of
// truth for every projection; insertion order is display-significant.
//
// All mutation operations are pure: they return a fresh Registry and leave
// the receiver untouched. Referencing an id that is not present is a no-op
// (identity return), never an error.
type Registry []Task

// Clone returns a deep copy of the registry.
func (r Registry) Clone() Registry {
	if r == nil {
		return nil
	}
	out := make(Registry, len(r))
	for i, t := range r {
		out[i] = t.Clone()
	}
	return out
}

// Find returns the task with the given id, if present.
func (r Registry) Find(id string) (Task, bool) {
	for _, t := range r {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Contains reports whether a task with the given id exists.
func (r Registry) Contains(id string) bool {
	_, ok := r.Find(id)
	return ok
}

// IDs returns the task ids in registry order.
func (r Registry) IDs() []string {
	ids := make([]string, len(r))
	for i, t := range r {
		ids[i] = t.ID
	}
	return ids
}

// SetStatus updates one task's status and stamps LastUpdated.
func (r Registry) SetStatus(id string, status Status, now time.Time) Registry {
	return r.mapTasks(func(t Task) Task {
		if t.ID == id {
			t.Status = status
			t.LastUpdated = &now
		}
		return t
	})
}

// BulkSetStatus applies a status to every task whose id is in the set.
// Application order across matched tasks is not observable: each update is
// independent.
func (r Registry) BulkSetStatus(ids map[string]bool, status Status, now time.Time) Registry {
	return r.mapTasks(func(t Task) Task {
		if ids[t.ID] {
			t.Status = status
			t.LastUpdated = &now
		}
		return t
	})
}

// SetPriority updates one task's priority.
func (r Registry) SetPriority(id string, p Priority) Registry {
	return r.mapTasks(func(t Task) Task {
		if t.ID == id {
			t.Priority = p
		}
		return t
	})
}

// BulkSetPriority applies a priority to every task whose id is in the set.
func (r Registry) BulkSetPriority(ids map[string]bool, p Priority) Registry {
	return r.mapTasks(func(t Task) Task {
		if ids[t.ID] {
			t.Priority = p
		}
		return t
	})
}

// SetOwner updates one task's owner label.
func (r Registry) SetOwner(id, owner string) Registry {
	return r.mapTasks(func(t Task) Task {
		if t.ID == id {
			t.Owner = owner
		}
		return t
	})
}

// ToggleSubtask flips the completed flag on exactly one subtask. The parent
// status is never touched.
func (r Registry) ToggleSubtask(taskID, subtaskID string) Registry {
	return r.mapTasks(func(t Task) Task {
		if t.ID != taskID {
			return t
		}
		subs := append([]SubTask(nil), t.Subtasks...)
		for i := range subs {
			if subs[i].ID == subtaskID {
				subs[i].Completed = !subs[i].Completed
			}
		}
		t.Subtasks = subs
		return t
	})
}

// ReplaceSubtasks swaps a task's checklist wholesale, used after subtask
// generation.
func (r Registry) ReplaceSubtasks(taskID string, subs []SubTask) Registry {
	return r.mapTasks(func(t Task) Task {
		if t.ID == taskID {
			t.Subtasks = append([]SubTask(nil), subs...)
		}
		return t
	})
}

// AppendComment appends a comment to a task. Text is trimmed; an empty
// result is a no-op.
func (r Registry) AppendComment(taskID string, c Comment) Registry {
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return r
	}
	return r.mapTasks(func(t Task) Task {
		if t.ID == taskID {
			t.Comments = append(append([]Comment(nil), t.Comments...), c)
		}
		return t
	})
}

// AppendArtifact attaches a generated artifact to a task.
func (r Registry) AppendArtifact(taskID string, a Artifact) Registry {
	return r.mapTasks(func(t Task) Task {
		if t.ID == taskID {
			t.Artifacts = append(append([]Artifact(nil), t.Artifacts...), a)
		}
		return t
	})
}

// ApplyPatch merges a partial patch into one task, field by field.
func (r Registry) ApplyPatch(taskID string, p TaskPatch) Registry {
	return r.mapTasks(func(t Task) Task {
		if t.ID == taskID {
			t = p.ApplyTo(t)
		}
		return t
	})
}

// DeleteTasks removes every task whose id is in the set. Dependencies of the
// surviving tasks are left untouched; a reference to a removed task stays in
// place and is surfaced as a broken dependency by the projections.
func (r Registry) DeleteTasks(ids map[string]bool) Registry {
	out := make(Registry, 0, len(r))
	for _, t := range r {
		if !ids[t.ID] {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Append adds an already-constructed task to the end of the registry.
func (r Registry) Append(t Task) Registry {
	out := r.Clone()
	return append(out, t.Clone())
}

// mapTasks applies fn to a cloned copy of every task.
func (r Registry) mapTasks(fn func(Task) Task) Registry {
	out := make(Registry, len(r))
	for i, t := range r {
		out[i] = fn(t.Clone())
	}
	return out
}

// ParseDependencyList splits a comma-separated dependency string, trimming
// whitespace and dropping empty entries. Malformed input degrades to an
// empty list.
func ParseDependencyList(s string) []string {
	deps := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			deps = append(deps, part)
		}
	}
	return deps
}
