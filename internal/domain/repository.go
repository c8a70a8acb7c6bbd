package domain

import (
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

// WorkspaceRepository handles persistence of forgeflow artifacts in the
// .forgeflow/ directory.
//
// LoadWorkflow returns (nil, nil) when no saved workflow exists; that is an
// informational outcome, not an error. A present-but-corrupt blob is a load
// error and must leave the caller's in-memory state untouched.
type WorkspaceRepository interface {
	Initialize() error
	IsInitialized() bool
	SaveWorkflow(r workflow.Registry) error
	LoadWorkflow() (workflow.Registry, error)
	SaveMission(prompt string) error
	LoadMission() (string, error)
}
