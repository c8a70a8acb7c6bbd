// Package events defines the domain events emitted by workflow mutations.
// The SSE stream, the notifier and the messaging adapters all consume them.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the workflow service.
const (
	TypeWorkflowReplaced  = "workflow.replaced"
	TypeWorkflowOptimized = "workflow.optimized"
	TypeWorkflowLoaded    = "workflow.loaded"
	TypeWorkflowSaved     = "workflow.saved"
	TypeTaskInjected      = "task.injected"
	TypeTaskUpdated       = "task.updated"
	TypeTasksDeleted      = "tasks.deleted"
	TypeCommentAdded      = "task.comment_added"
	TypeHistorySeek       = "history.seek"
	TypeGenerationFailed  = "generation.failed"
	TypeStorageFailed     = "storage.failed"
)

// Event is a single domain event on the workflow aggregate.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Actor     string                 `json:"actor"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// New builds an event with a fresh id and the current time.
func New(eventType, actor string, metadata map[string]interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Actor:     actor,
		Metadata:  metadata,
	}
}
