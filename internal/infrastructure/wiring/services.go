// Package wiring assembles the application services over a workspace root.
package wiring

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/forgeflow/internal/application"
	domainai "github.com/felixgeelhaar/forgeflow/internal/domain/ai"
	"github.com/felixgeelhaar/forgeflow/internal/domain/events"
	"github.com/felixgeelhaar/forgeflow/internal/domain/workflow"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/config"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/messaging"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/storage"
)

// AppServices exposes the application layer wired together for a repo root.
type AppServices struct {
	Repo       *storage.FilesystemRepository
	Dispatcher *events.Dispatcher
	Notifier   *application.Notifier
	Workflows  *application.WorkflowService
	Generation *application.GenerationService
	Session    *application.Session
	Provider   domainai.Provider
	Messaging  *messaging.Registry
}

// BuildAppServices constructs the service graph for a workspace root. The
// registry starts from the persisted manifest when one exists, otherwise
// from the seed workflow.
func BuildAppServices(root string) (*AppServices, error) {
	repo := storage.NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		return nil, err
	}

	dispatcher := events.NewDispatcher()
	notifier := application.NewNotifier()

	// Every dispatched event also lands in the audit log.
	dispatcher.Subscribe(func(e events.Event) {
		_ = repo.AppendEvent(e)
	})

	initial := workflow.Seed()
	if saved, err := repo.LoadWorkflow(); err == nil && saved != nil {
		initial = saved
	}

	workflows := application.NewWorkflowService(initial, repo, dispatcher, notifier)

	provider, err := LoadAIProvider(root)
	if err != nil {
		return nil, fmt.Errorf("load AI provider: %w", err)
	}

	generation, err := application.NewGenerationService(workflows, provider, notifier, dispatcher)
	if err != nil {
		return nil, err
	}

	msgRegistry, err := buildMessaging(root, repo, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("load messaging config: %w", err)
	}

	return &AppServices{
		Repo:       repo,
		Dispatcher: dispatcher,
		Notifier:   notifier,
		Workflows:  workflows,
		Generation: generation,
		Session:    application.NewSession(),
		Provider:   provider,
		Messaging:  msgRegistry,
	}, nil
}

// buildMessaging wires the configured outbound adapters into the event
// stream. Failed deliveries land in a dead letter file next to the audit
// log rather than surfacing to the operator.
func buildMessaging(root string, repo *storage.FilesystemRepository, dispatcher *events.Dispatcher) (*messaging.Registry, error) {
	cfg, err := config.LoadMessagingConfig(root)
	if err != nil {
		return nil, err
	}

	registry, err := messaging.NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	if len(registry.Adapters()) == 0 {
		return registry, nil
	}

	dlPath, err := repo.ResolvePath("deadletter.jsonl")
	if err != nil {
		return nil, err
	}
	registry.WithDeadLetter(messaging.NewDeadLetterStore(dlPath))

	dispatcher.Subscribe(func(e events.Event) {
		_ = registry.Broadcast(context.Background(), e)
	})
	return registry, nil
}

// Mission returns the persisted mission prompt, empty when none is saved.
func (s *AppServices) Mission() string {
	mission, err := s.Repo.LoadMission()
	if err != nil {
		return ""
	}
	return mission
}

// Synthesize runs a full generation and persists both the mission and the
// resulting workflow.
func (s *AppServices) Synthesize(ctx context.Context, prompt string) error {
	if err := s.Generation.SynthesizeWorkflow(ctx, prompt); err != nil {
		return err
	}
	if err := s.Repo.SaveMission(prompt); err != nil {
		return err
	}
	return s.Workflows.Save()
}
