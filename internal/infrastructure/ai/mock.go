package ai

import (
	"context"

	"github.com/felixgeelhaar/forgeflow/internal/domain/ai"
)

// MockProvider returns a canned two-node workflow so the tool can be
// exercised end to end without any API key.
type MockProvider struct {
	Model string
}

func (p *MockProvider) ID() string {
	return "mock:" + p.Model
}

const mockWorkflowJSON = `[
  {
    "id": "T-001",
    "title": "Provision Core Substrate",
    "description": "Stand up the base compute and network fabric for the pipeline.",
    "status": "PENDING",
    "dependencies": [],
    "owner": "DevOps_Stream",
    "priority": "HIGH",
    "subtasks": [
      {"id": "S-001", "title": "Allocate compute pool", "completed": false},
      {"id": "S-002", "title": "Wire service mesh", "completed": false}
    ]
  },
  {
    "id": "T-002",
    "title": "Deploy Telemetry Mesh",
    "description": "Instrument every node with structured event emission.",
    "status": "PENDING",
    "dependencies": ["T-001"],
    "owner": "Logic_Unit",
    "priority": "MEDIUM",
    "subtasks": [
      {"id": "S-003", "title": "Install collectors", "completed": false}
    ]
  }
]`

func (p *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	return &ai.CompletionResponse{
		Text:  mockWorkflowJSON,
		Model: "mock",
		Usage: ai.TokenUsage{InputTokens: len(req.Prompt) / 4, OutputTokens: 200},
	}, nil
}
