package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
)

const ForgeflowDir = ".forgeflow"
const WorkflowFile = "workflow.json"
const MissionFile = "mission.json"
const ConfigFile = "config.yaml"
const EventsFile = "events.jsonl"

type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root this repository was opened on.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// Dir returns the absolute .forgeflow directory path.
func (r *FilesystemRepository) Dir() string {
	return filepath.Join(r.root, ForgeflowDir)
}

// ResolvePath ensures the path is within the .forgeflow directory and
// prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, ForgeflowDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	if err := os.MkdirAll(r.Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create .forgeflow directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(r.Dir())
	return err == nil
}

func (r *FilesystemRepository) SaveWorkflow(reg workflow.Registry) error {
	path, err := r.ResolvePath(WorkflowFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

func (r *FilesystemRepository) LoadWorkflow() (workflow.Registry, error) {
	retryer := retry.New[workflow.Registry](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (workflow.Registry, error) {
		path, err := r.ResolvePath(WorkflowFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- path is validated via ResolvePath
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read workflow file: %w", err)
		}

		var reg workflow.Registry
		if err := json.Unmarshal(data, &reg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
		}

		return reg, nil
	})
}

type missionBlob struct {
	Prompt  string `json:"prompt"`
	SavedAt string `json:"savedAt"`
}

func (r *FilesystemRepository) SaveMission(prompt string) error {
	path, err := r.ResolvePath(MissionFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(missionBlob{
		Prompt:  prompt,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mission: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

func (r *FilesystemRepository) LoadMission() (string, error) {
	path, err := r.ResolvePath(MissionFile)
	if err != nil {
		return "", err
	}

	// #nosec G304 -- path is validated via ResolvePath
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read mission file: %w", err)
	}

	var blob missionBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return "", fmt.Errorf("failed to unmarshal mission: %w", err)
	}
	return blob.Prompt, nil
}

// AppendEvent writes one audit line to events.jsonl.
func (r *FilesystemRepository) AppendEvent(payload interface{}) error {
	path, err := r.ResolvePath(EventsFile)
	if err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// #nosec G304 -- path is validated via ResolvePath
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}
