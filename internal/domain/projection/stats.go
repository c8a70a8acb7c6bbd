// Package projection derives read-only views from the workflow registry.
// Nothing in this package mutates the registry.
package projection

import "github.com/felixgeelhaar/forgeflow/internal/domain/workflow"

// Stats summarizes the registry by status and priority.
type Stats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	Running       int `json:"running"`
	Done          int `json:"done"`
	Failed        int `json:"failed"`
	HighPriority  int `json:"high_priority"`
	Effectiveness int `json:"effectiveness"` // round(100*done/total), 0 when empty
}

// ComputeStats tallies the registry.
func ComputeStats(r workflow.Registry) Stats {
	s := Stats{Total: len(r)}
	for _, t := range r {
		switch t.Status {
		case workflow.StatusPending:
			s.Pending++
		case workflow.StatusRunning:
			s.Running++
		case workflow.StatusDone:
			s.Done++
		case workflow.StatusFailed:
			s.Failed++
		}
		if t.Priority == workflow.PriorityHigh {
			s.HighPriority++
		}
	}
	if s.Total > 0 {
		s.Effectiveness = int(float64(s.Done)/float64(s.Total)*100 + 0.5)
	}
	return s
}
