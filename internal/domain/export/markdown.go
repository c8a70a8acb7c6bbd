package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/forgeflow/internal/domain/projection"
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

// RenderMarkdown produces a human-readable mission recap: stats up front,
// one headed section per task, artifacts embedded as fenced code blocks,
// and a blockers section listing failed tasks.
func RenderMarkdown(r workflow.Registry, mission string, now time.Time) string {
	stats := projection.ComputeStats(r)
	var b strings.Builder

	b.WriteString("# Mission Recap\n\n")
	if mission != "" {
		fmt.Fprintf(&b, "> %s\n\n", mission)
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format(time.RFC3339))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Registry | %d |\n", stats.Total)
	fmt.Fprintf(&b, "| Completed | %d |\n", stats.Done)
	fmt.Fprintf(&b, "| Active | %d |\n", stats.Running)
	fmt.Fprintf(&b, "| Failed | %d |\n", stats.Failed)
	fmt.Fprintf(&b, "| High priority | %d |\n", stats.HighPriority)
	fmt.Fprintf(&b, "| Effectiveness | %d%% |\n\n", stats.Effectiveness)

	b.WriteString("## Tasks\n\n")
	for _, t := range r {
		fmt.Fprintf(&b, "### %s — %s\n\n", t.ID, t.Title)
		fmt.Fprintf(&b, "- Status: %s\n", t.Status)
		fmt.Fprintf(&b, "- Priority: %s\n", t.Priority.OrDefault())
		if t.Owner != "" {
			fmt.Fprintf(&b, "- Owner: %s\n", t.Owner)
		}
		if len(t.Dependencies) > 0 {
			fmt.Fprintf(&b, "- Depends on: %s\n", strings.Join(t.Dependencies, ", "))
		}
		b.WriteString("\n")
		if t.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", t.Description)
		}

		if len(t.Subtasks) > 0 {
			for _, s := range t.Subtasks {
				mark := " "
				if s.Completed {
					mark = "x"
				}
				fmt.Fprintf(&b, "- [%s] %s\n", mark, s.Title)
			}
			b.WriteString("\n")
		}

		for _, a := range t.Artifacts {
			fmt.Fprintf(&b, "**%s** (%s)\n\n", a.Label, a.Type)
			if a.Type == workflow.ArtifactLink {
				fmt.Fprintf(&b, "<%s>\n\n", a.Content)
				continue
			}
			fence := fenceLang(a.Type)
			fmt.Fprintf(&b, "```%s\n%s\n```\n\n", fence, a.Content)
		}
	}

	failed := []workflow.Task{}
	for _, t := range r {
		if t.Status == workflow.StatusFailed {
			failed = append(failed, t)
		}
	}
	b.WriteString("## Blockers\n\n")
	if len(failed) == 0 {
		b.WriteString("No impediments.\n")
	} else {
		for _, t := range failed {
			fmt.Fprintf(&b, "- %s — %s\n", t.ID, t.Title)
		}
	}

	return b.String()
}

func fenceLang(t workflow.ArtifactType) string {
	switch t {
	case workflow.ArtifactJSON:
		return "json"
	case workflow.ArtifactLog:
		return "text"
	default:
		return ""
	}
}
