package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/forgeflow/internal/domain/events"
	"github.com/felixgeelhaar/forgeflow/internal/domain/messaging"
)

// Registry creates messaging adapters from configuration.
type Registry struct {
	adapters   []messaging.MessageAdapter
	deadLetter *DeadLetterStore
}

// NewRegistry creates adapters from a MessagingConfig.
func NewRegistry(config *messaging.MessagingConfig) (*Registry, error) {
	if config == nil {
		return &Registry{}, nil
	}

	var adapters []messaging.MessageAdapter
	for _, cfg := range config.Adapters {
		if !cfg.Enabled {
			continue
		}

		adapter, err := createAdapter(cfg)
		if err != nil {
			return nil, fmt.Errorf("create adapter %q: %w", cfg.Name, err)
		}
		adapters = append(adapters, adapter)
	}

	return &Registry{adapters: adapters}, nil
}

// Adapters returns all active adapters.
func (r *Registry) Adapters() []messaging.MessageAdapter {
	return r.adapters
}

// WithDeadLetter attaches a store that records failed deliveries.
func (r *Registry) WithDeadLetter(store *DeadLetterStore) *Registry {
	r.deadLetter = store
	return r
}

// Broadcast fans an event out to every adapter, collecting the first error.
// When a dead letter store is attached, every failed delivery is recorded.
func (r *Registry) Broadcast(ctx context.Context, event events.Event) error {
	var firstErr error
	for _, a := range r.adapters {
		err := a.Send(ctx, event)
		if err == nil {
			continue
		}
		if r.deadLetter != nil {
			_ = r.deadLetter.Append(DeadLetter{
				Adapter:   a.Name(),
				Event:     event,
				Error:     err.Error(),
				Timestamp: time.Now(),
			})
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("adapter %q: %w", a.Name(), err)
		}
	}
	return firstErr
}

func createAdapter(cfg messaging.AdapterConfig) (messaging.MessageAdapter, error) {
	switch cfg.Type {
	case "webhook":
		return NewWebhookAdapter(cfg), nil
	case "slack":
		return NewSlackAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown adapter type: %s", cfg.Type)
	}
}
