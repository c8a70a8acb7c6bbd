// Package export serializes the registry into deployable text formats:
// a JSON manifest, a Markdown recap, or a Mermaid diagram. Exactly one
// format is produced per call; the caller picks.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/forgeflow/internal/domain/projection"
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

// Format selects an export serialization.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatMermaid  Format = "mermaid"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatMarkdown, FormatMermaid:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format: %s", s)
	}
}

// Manifest is the full-fidelity JSON export shape.
type Manifest struct {
	Mission   string            `json:"mission"`
	Timestamp time.Time         `json:"timestamp"`
	Tasks     workflow.Registry `json:"tasks"`
	Stats     projection.Stats  `json:"stats"`
}

// RenderJSON serializes the registry, the mission prompt and the derived
// stats into an indented JSON manifest. The task sequence round-trips
// field for field.
func RenderJSON(r workflow.Registry, mission string, now time.Time) (string, error) {
	m := Manifest{
		Mission:   mission,
		Timestamp: now,
		Tasks:     r,
		Stats:     projection.ComputeStats(r),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return string(data), nil
}

// Render produces the selected format.
func Render(f Format, r workflow.Registry, mission string, now time.Time) (string, error) {
	switch f {
	case FormatJSON:
		return RenderJSON(r, mission, now)
	case FormatMarkdown:
		return RenderMarkdown(r, mission, now), nil
	case FormatMermaid:
		return RenderMermaid(r), nil
	default:
		return "", fmt.Errorf("unknown export format: %s", f)
	}
}
