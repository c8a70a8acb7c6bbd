package projection

import "github.com/felixgeelhaar/forgeflow/internal/domain/workflow"

// Column is one status bucket of the kanban board.
type Column struct {
	Status workflow.Status `json:"status"`
	Label  string          `json:"label"`
	Tasks  []workflow.Task `json:"tasks"`
}

// Board groups the registry into the four fixed status columns, preserving
// registry order within each bucket.
type Board struct {
	Columns []Column `json:"columns"`
}

// ComputeBoard buckets tasks by status.
func ComputeBoard(r workflow.Registry) Board {
	byStatus := make(map[workflow.Status][]workflow.Task)
	for _, t := range r {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}

	b := Board{}
	for _, status := range workflow.AllStatuses() {
		tasks := byStatus[status]
		if tasks == nil {
			tasks = []workflow.Task{}
		}
		b.Columns = append(b.Columns, Column{
			Status: status,
			Label:  status.DisplayName(),
			Tasks:  tasks,
		})
	}
	return b
}
