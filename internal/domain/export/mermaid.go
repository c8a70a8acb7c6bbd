package export

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

// Mermaid style directives keyed off task status.
var mermaidStyles = map[workflow.Status]string{
	workflow.StatusDone:    "fill:#10b981,color:#fff",
	workflow.StatusRunning: "fill:#3b82f6,color:#fff",
	workflow.StatusFailed:  "fill:#ef4444,color:#fff",
}

// RenderMermaid produces a `graph LR` definition: one node statement and
// conditional style directive per task, one edge per dependency. Task ids
// are sanitized for diagram syntax validity.
func RenderMermaid(r workflow.Registry) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	for _, t := range r {
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", mermaidID(t.ID), escapeLabel(t.Title))
	}

	for _, t := range r {
		for _, dep := range t.Dependencies {
			fmt.Fprintf(&b, "    %s --> %s\n", mermaidID(dep), mermaidID(t.ID))
		}
	}

	for _, t := range r {
		if style, ok := mermaidStyles[t.Status]; ok {
			fmt.Fprintf(&b, "    style %s %s\n", mermaidID(t.ID), style)
		}
	}

	return b.String()
}

// mermaidID replaces characters that are illegal in mermaid node tokens.
func mermaidID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, `#quot;`)
}
