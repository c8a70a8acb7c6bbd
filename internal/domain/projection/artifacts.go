package projection

import (
	"strings"

	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

// ArtifactEntry is one artifact flattened out of its parent task.
type ArtifactEntry struct {
	workflow.Artifact
	ParentID    string `json:"parent_id"`
	ParentTitle string `json:"parent_title"`
}

// ArtifactFilter narrows the repository view. A zero filter matches
// everything.
type ArtifactFilter struct {
	Type   workflow.ArtifactType // empty = all types
	Search string                // case-insensitive over label and parent title
}

// CollectArtifacts flattens all task artifacts, preserving registry order,
// and applies the filter.
func CollectArtifacts(r workflow.Registry, f ArtifactFilter) []ArtifactEntry {
	needle := strings.ToLower(f.Search)
	out := []ArtifactEntry{}
	for _, t := range r {
		for _, a := range t.Artifacts {
			if f.Type != "" && a.Type != f.Type {
				continue
			}
			if needle != "" &&
				!strings.Contains(strings.ToLower(a.Label), needle) &&
				!strings.Contains(strings.ToLower(t.Title), needle) {
				continue
			}
			out = append(out, ArtifactEntry{
				Artifact:    a,
				ParentID:    t.ID,
				ParentTitle: t.Title,
			})
		}
	}
	return out
}
