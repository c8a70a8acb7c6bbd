package workflow

// TaskPatch is a partial update to a task. Every field is optional; a nil
// field leaves the original value unchanged. Patches coming back from the
// generation service are merged field by field, never as a blind overwrite.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Owner       *string   `json:"owner,omitempty"`
	Duration    *string   `json:"duration,omitempty"`
}

// IsZero reports whether the patch carries no changes.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Owner == nil && p.Duration == nil
}

// ApplyTo returns a copy of the task with the populated patch fields merged
// in. Invalid priority values in the patch are ignored.
func (p TaskPatch) ApplyTo(t Task) Task {
	out := t.Clone()
	if p.Title != nil && *p.Title != "" {
		out.Title = *p.Title
	}
	if p.Description != nil && *p.Description != "" {
		out.Description = *p.Description
	}
	if p.Priority != nil && p.Priority.IsValid() {
		out.Priority = *p.Priority
	}
	if p.Owner != nil && *p.Owner != "" {
		out.Owner = *p.Owner
	}
	if p.Duration != nil && *p.Duration != "" {
		out.Duration = *p.Duration
	}
	return out
}
