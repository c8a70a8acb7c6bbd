package workflow

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator hands out task ids in the form T-0001. Generated ids are
// checked against the ids already seen, so a registry loaded from disk or
// replaced by synthesis can never collide with a freshly injected task.
type IDGenerator struct {
	mu   sync.Mutex
	next int
	seen map[string]bool
}

// NewIDGenerator creates a generator primed with the given existing ids.
func NewIDGenerator(existing ...string) *IDGenerator {
	g := &IDGenerator{next: 1, seen: make(map[string]bool)}
	g.Observe(existing...)
	return g
}

// Observe records ids that are already in use.
func (g *IDGenerator) Observe(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		g.seen[id] = true
	}
}

// NextTaskID returns a fresh unique task id.
func (g *IDGenerator) NextTaskID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		id := fmt.Sprintf("T-%04d", g.next)
		g.next++
		if !g.seen[id] {
			g.seen[id] = true
			return id
		}
	}
}

// NewCommentID returns a unique comment id scoped to its parent task.
func NewCommentID() string {
	return "C-" + shortUUID()
}

// NewSubtaskID returns a unique subtask id scoped to its parent task.
func NewSubtaskID() string {
	return "S-" + shortUUID()
}

// NewArtifactID returns a unique artifact id scoped to its parent task.
func NewArtifactID() string {
	return "A-" + shortUUID()
}

func shortUUID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
