package messaging_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/forgeflow/internal/domain/events"
	domainmsg "github.com/felixgeelhaar/forgeflow/internal/domain/messaging"
	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/messaging"
)

func TestWebhookAdapter_Send_Success(t *testing.T) {
	var receivedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := messaging.NewWebhookAdapter(domainmsg.AdapterConfig{
		Name:    "test-webhook",
		Type:    "webhook",
		URL:     server.URL,
		Enabled: true,
	})

	event := events.New(events.TypeTaskInjected, "operator", map[string]interface{}{"task": "T-0001"})

	if err := adapter.Send(context.Background(), event); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if len(receivedBody) == 0 {
		t.Fatal("expected body to be sent")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(receivedBody, &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if payload["event_type"] != events.TypeTaskInjected {
		t.Errorf("unexpected event_type: %v", payload["event_type"])
	}
	if _, ok := payload["timestamp"]; !ok {
		t.Error("expected 'timestamp' field in webhook payload")
	}
	if _, ok := payload["data"]; !ok {
		t.Error("expected 'data' field in webhook payload")
	}
}

func TestWebhookAdapter_Send_Filtered(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := messaging.NewWebhookAdapter(domainmsg.AdapterConfig{
		Name:         "filtered",
		Type:         "webhook",
		URL:          server.URL,
		EventFilters: []string{events.TypeWorkflowReplaced},
		Enabled:      true,
	})

	event := events.New(events.TypeTaskInjected, "operator", nil)
	if err := adapter.Send(context.Background(), event); err != nil {
		t.Fatalf("filtered send should be a no-op, got %v", err)
	}
	if called {
		t.Error("filtered event should not reach the webhook")
	}
}

func TestWebhookAdapter_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := messaging.NewWebhookAdapter(domainmsg.AdapterConfig{
		Name: "failing", Type: "webhook", URL: server.URL, Enabled: true,
	})

	event := events.New(events.TypeTasksDeleted, "operator", nil)
	if err := adapter.Send(context.Background(), event); err == nil {
		t.Error("expected error for 5xx response")
	}
}

func TestRegistry_UnknownAdapterType(t *testing.T) {
	_, err := messaging.NewRegistry(&domainmsg.MessagingConfig{
		Adapters: []domainmsg.AdapterConfig{
			{Name: "bogus", Type: "carrier-pigeon", Enabled: true},
		},
	})
	if err == nil {
		t.Error("expected error for unknown adapter type")
	}
}

func TestRegistry_DisabledAdapterSkipped(t *testing.T) {
	reg, err := messaging.NewRegistry(&domainmsg.MessagingConfig{
		Adapters: []domainmsg.AdapterConfig{
			{Name: "off", Type: "webhook", URL: "http://example.invalid", Enabled: false},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reg.Adapters()) != 0 {
		t.Errorf("expected no adapters, got %d", len(reg.Adapters()))
	}
}
