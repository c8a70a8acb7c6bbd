package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/forgeflow/internal/domain/events"
	"github.com/felixgeelhaar/forgeflow/internal/domain/messaging"
)

// SlackAdapter sends events to a Slack incoming webhook URL.
type SlackAdapter struct {
	config messaging.AdapterConfig
	client *http.Client
}

// NewSlackAdapter creates a Slack adapter from config.
func NewSlackAdapter(config messaging.AdapterConfig) *SlackAdapter {
	return &SlackAdapter{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *SlackAdapter) Name() string { return a.config.Name }
func (a *SlackAdapter) Type() string { return "slack" }

func (a *SlackAdapter) Send(ctx context.Context, event events.Event) error {
	if !a.config.WantsEvent(event.Type) {
		return nil
	}

	text := formatSlackMessage(event)

	payload := map[string]interface{}{
		"text": text,
		"blocks": []map[string]interface{}{
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("send to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}

	return nil
}

func formatSlackMessage(event events.Event) string {
	switch event.Type {
	case events.TypeWorkflowReplaced:
		return fmt.Sprintf(":sparkles: Workflow synthesized (%v nodes)", event.Metadata["count"])
	case events.TypeWorkflowOptimized:
		return ":zap: Workflow optimized for parallelism"
	case events.TypeTaskInjected:
		return fmt.Sprintf(":heavy_plus_sign: Node injected: %v", event.Metadata["task"])
	case events.TypeTasksDeleted:
		return fmt.Sprintf(":wastebasket: Nodes deleted: %v", event.Metadata["count"])
	case events.TypeGenerationFailed:
		return ":warning: Generation failed, workflow unchanged"
	default:
		return fmt.Sprintf("Forgeflow event: %s", event.Type)
	}
}
