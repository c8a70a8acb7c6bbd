package projection

import (
	"fmt"

	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

// Layout constants for the flow view, in logical pixels.
const (
	NodeWidth  = 340
	NodeHeight = 220
	NodeSep    = 100 // minimum vertical gap between nodes in a rank
	RankSep    = 200 // horizontal gap between ranks
)

// EdgeEmphasis describes how an edge should be rendered. It is derived from
// the source task's status: completed and active sources are emphasized.
type EdgeEmphasis string

const (
	EdgeNeutral  EdgeEmphasis = "neutral"
	EdgeActive   EdgeEmphasis = "active"   // source RUNNING: animated, blue
	EdgeComplete EdgeEmphasis = "complete" // source DONE: green
)

// Node is one positioned task in the flow view.
type Node struct {
	ID       string          `json:"id"`
	Task     workflow.Task   `json:"task"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Rank     int             `json:"rank"`
	Selected bool            `json:"selected"`
	Status   workflow.Status `json:"status"`
}

// Edge is one dependency link, directed dependency -> dependent.
type Edge struct {
	ID       string       `json:"id"`
	Source   string       `json:"source"`
	Target   string       `json:"target"`
	Animated bool         `json:"animated"`
	Emphasis EdgeEmphasis `json:"emphasis"`
}

// Graph is the laid-out flow projection of the registry.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// ComputeGraph builds the node/edge set and assigns left-to-right layered
// coordinates. Edges referencing tasks outside the registry are skipped;
// cycles are tolerated by breaking back edges during ranking.
func ComputeGraph(r workflow.Registry, selected map[string]bool) Graph {
	g := Graph{Nodes: []Node{}, Edges: []Edge{}}
	if len(r) == 0 {
		return g
	}

	byID := make(map[string]workflow.Task, len(r))
	for _, t := range r {
		byID[t.ID] = t
	}

	type edge struct{ from, to string }
	var edges []edge
	for _, t := range r {
		for _, depID := range t.Dependencies {
			source, ok := byID[depID]
			if !ok {
				continue
			}
			edges = append(edges, edge{from: depID, to: t.ID})

			emphasis := EdgeNeutral
			switch source.Status {
			case workflow.StatusRunning:
				emphasis = EdgeActive
			case workflow.StatusDone:
				emphasis = EdgeComplete
			}
			g.Edges = append(g.Edges, Edge{
				ID:       fmt.Sprintf("e-%s-%s", depID, t.ID),
				Source:   depID,
				Target:   t.ID,
				Animated: source.Status == workflow.StatusRunning || source.Status == workflow.StatusDone,
				Emphasis: emphasis,
			})
		}
	}

	forward := make([][2]string, 0, len(edges))
	for _, e := range edges {
		forward = append(forward, [2]string{e.from, e.to})
	}
	positions := layoutLayered(r.IDs(), forward)

	for _, t := range r {
		pos := positions[t.ID]
		g.Nodes = append(g.Nodes, Node{
			ID:       t.ID,
			Task:     t,
			X:        pos.x,
			Y:        pos.y,
			Rank:     pos.rank,
			Selected: selected[t.ID],
			Status:   t.Status,
		})
	}
	return g
}
