package workflow

// Seed returns the starter workflow used when no saved state exists: a tiny
// two-node pipeline so every projection has something to render.
func Seed() Registry {
	return Registry{
		{
			ID:           "T-001",
			Title:        "Data Nexus Ingestion",
			Description:  "High-throughput stream from distributed edge sensors.",
			Status:       StatusDone,
			Priority:     PriorityHigh,
			Dependencies: []string{},
			Owner:        "Root-Admin",
			Duration:     "240ms",
			Subtasks: []SubTask{
				{ID: "S1", Title: "Socket handshake", Completed: true},
				{ID: "S2", Title: "Buffer allocation", Completed: true},
			},
			Comments: []Comment{
				{ID: "C-INIT", Author: "System", Text: "Pipeline initialized successfully.", Timestamp: "1h ago"},
			},
		},
		{
			ID:           "T-002",
			Title:        "Semantic Normalizer",
			Description:  "Schema enforcement and field mapping.",
			Status:       StatusRunning,
			Priority:     PriorityMedium,
			Dependencies: []string{"T-001"},
			Owner:        "AI-Kernel",
			Duration:     "1.2s",
			Subtasks: []SubTask{
				{ID: "S3", Title: "JSON Validation", Completed: true},
				{ID: "S4", Title: "Type casting", Completed: false},
			},
			Comments: []Comment{
				{ID: "C1", Author: "System", Text: "Normalizing large batches...", Timestamp: "2m ago"},
			},
		},
	}
}
