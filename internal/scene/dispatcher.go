// ABOUTME: Scene dispatchers: webhook delivery and a test-mode simulator.
// ABOUTME: Webhook payload is {scene, source, timestamp} POSTed as JSON.

package scene

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single webhook delivery.
const DefaultTimeout = 10 * time.Second

// Dispatcher triggers a scene on a home controller.
type Dispatcher interface {
	Dispatch(ctx context.Context, sceneName, source string) error
}

// webhookPayload is the body Home Assistant webhook automations receive.
type webhookPayload struct {
	Scene     string `json:"scene"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

// WebhookClient dispatches scenes by POSTing to a Home Assistant webhook.
type WebhookClient struct {
	controllerURL string
	webhookID     string
	client        *http.Client
	logger        *slog.Logger
}

// NewWebhookClient creates a dispatcher for one home controller. A zero
// timeout falls back to DefaultTimeout.
func NewWebhookClient(controllerURL, webhookID string, timeout time.Duration, logger *slog.Logger) *WebhookClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookClient{
		controllerURL: strings.TrimSuffix(controllerURL, "/"),
		webhookID:     webhookID,
		client:        &http.Client{Timeout: timeout},
		logger:        logger.With("component", "scene"),
	}
}

// Dispatch fires the webhook. Home Assistant returns 200 with an empty
// body on success; any other status is an error.
func (w *WebhookClient) Dispatch(ctx context.Context, sceneName, source string) error {
	body, err := json.Marshal(webhookPayload{
		Scene:     sceneName,
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/webhook/%s", w.controllerURL, w.webhookID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling controller webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("controller webhook returned status %d", resp.StatusCode)
	}

	w.logger.Info("scene dispatched", "scene", sceneName, "source", source)
	return nil
}

// Simulator is a dispatcher for test-mode homes. It records dispatches
// and never touches the network.
type Simulator struct {
	logger *slog.Logger
}

// NewSimulator creates a logging-only dispatcher.
func NewSimulator(logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{logger: logger.With("component", "scene", "mode", "simulated")}
}

// Dispatch logs the scene trigger and reports success.
func (s *Simulator) Dispatch(_ context.Context, sceneName, source string) error {
	s.logger.Info("scene dispatch simulated", "scene", sceneName, "source", source)
	return nil
}
