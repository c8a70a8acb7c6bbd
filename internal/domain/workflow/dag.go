package workflow

import "fmt"

// ValidateDAG checks the registry for circular dependencies. It returns a
// wrapped ErrCyclicDependency naming a task involved in the cycle.
func (r Registry) ValidateDAG() error {
	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)

	taskMap := make(map[string]Task, len(r))
	for _, t := range r {
		taskMap[t.ID] = t
	}

	var visit func(taskID string) error
	visit = func(taskID string) error {
		visited[taskID] = true
		recursionStack[taskID] = true

		task, exists := taskMap[taskID]
		if !exists {
			// A dependency on a missing task is a broken reference,
			// not a cycle. It is surfaced separately.
			recursionStack[taskID] = false
			return nil
		}

		for _, depID := range task.Dependencies {
			if !visited[depID] {
				if err := visit(depID); err != nil {
					return err
				}
			} else if recursionStack[depID] {
				return fmt.Errorf("%w: involving task %s", ErrCyclicDependency, depID)
			}
		}

		recursionStack[taskID] = false
		return nil
	}

	for _, t := range r {
		if !visited[t.ID] {
			if err := visit(t.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

// MissingDependencies returns, per task id, the dependency ids that point at
// tasks no longer present in the registry. Deletion never cascades, so the
// detail views render these as broken links.
func (r Registry) MissingDependencies() map[string][]string {
	present := make(map[string]bool, len(r))
	for _, t := range r {
		present[t.ID] = true
	}

	missing := make(map[string][]string)
	for _, t := range r {
		for _, dep := range t.Dependencies {
			if !present[dep] {
				missing[t.ID] = append(missing[t.ID], dep)
			}
		}
	}
	return missing
}
