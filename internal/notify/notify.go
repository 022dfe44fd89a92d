// Package notify delivers safety alerts to the review collaborator when a
// recording is flagged.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Notifier is invoked exactly once when a recording reaches the flagged state.
type Notifier interface {
	Notify(ctx context.Context, recordingID uuid.UUID, excerpts []string) error
}

// WebhookNotifier posts flagged-recording alerts to a configured endpoint.
type WebhookNotifier struct {
	url  string
	http *http.Client
}

// NewWebhookNotifier creates a notifier with a bounded per-call timeout.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Notify posts the recording id and the flagged excerpts as JSON.
func (n *WebhookNotifier) Notify(ctx context.Context, recordingID uuid.UUID, excerpts []string) error {
	payload, err := json.Marshal(map[string]any{
		"recording_id":     recordingID,
		"flagged_excerpts": excerpts,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notification endpoint returned %s: %s", resp.Status, string(body))
	}
	return nil
}
