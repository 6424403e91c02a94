package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Vovarama1992/mediarelay/internal/ports"
)

type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier builds the push notification sink. An empty URL yields
// a noop notifier, so call sites never have to branch.
func NewWebhookNotifier(url string) ports.Notifier {
	if url == "" {
		return NoopNotifier{}
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, string, map[string]any) error { return nil }

func (n *WebhookNotifier) Notify(ctx context.Context, event string, fields map[string]any) error {
	payload, err := json.Marshal(map[string]any{
		"event":  event,
		"fields": fields,
		"at":     time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify %s: %w", event, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify %s: http %d", event, resp.StatusCode)
	}
	return nil
}
