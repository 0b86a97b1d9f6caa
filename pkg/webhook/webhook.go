// Package webhook provides HTTP webhook notification support for lock events.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SwapLabsInc/ChadGI-sub003/pkg/logging"
)

// EventType represents the type of lock event that can trigger webhooks.
type EventType string

const (
	EventLockForceReleased EventType = "lock.force_released"
	EventLockCleanup       EventType = "lock.cleanup"
	EventLockLost          EventType = "lock.lost"
)

// Event represents a lock event payload sent to webhooks.
type Event struct {
	Event       EventType `json:"event"`
	Timestamp   string    `json:"timestamp"`
	RepoName    string    `json:"repo_name,omitempty"`
	IssueNumber int       `json:"issue_number,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
	Released    []int     `json:"released,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// HookConfig represents a single webhook endpoint.
type HookConfig struct {
	URL            string      `yaml:"url" json:"url"`
	Secret         string      `yaml:"secret,omitempty" json:"secret,omitempty"`
	Events         []EventType `yaml:"events" json:"events"`
	TimeoutSeconds int         `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Config represents the webhook configuration.
type Config struct {
	Enabled    bool         `yaml:"enabled" json:"enabled"`
	Hooks      []HookConfig `yaml:"hooks" json:"hooks"`
	MaxRetries int          `yaml:"max_retries" json:"max_retries"`
}

// Notifier delivers events to configured webhook endpoints.
type Notifier struct {
	cfg    Config
	client *http.Client
}

// NewNotifier creates a notifier from config. A disabled config yields a
// notifier whose Notify is a no-op.
func NewNotifier(cfg Config) *Notifier {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// Notify delivers the event to every hook subscribed to its type.
// Delivery failures are logged, never propagated: a broken webhook endpoint
// must not fail a lock operation.
func (n *Notifier) Notify(ctx context.Context, ev Event) {
	if !n.cfg.Enabled {
		return
	}
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	for _, hook := range n.cfg.Hooks {
		if !hook.subscribed(ev.Event) {
			continue
		}
		if err := n.deliver(ctx, hook, ev); err != nil {
			logging.ErrorErr("webhook delivery failed", err, map[string]any{
				"url":   hook.URL,
				"event": string(ev.Event),
			})
		}
	}
}

func (h HookConfig) subscribed(t EventType) bool {
	if len(h.Events) == 0 {
		return true
	}
	for _, e := range h.Events {
		if e == t {
			return true
		}
	}
	return false
}

func (n *Notifier) deliver(ctx context.Context, hook HookConfig, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	timeout := 10 * time.Second
	if hook.TimeoutSeconds > 0 {
		timeout = time.Duration(hook.TimeoutSeconds) * time.Second
	}

	var lastErr error
	for attempt := 0; attempt < n.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		if lastErr = n.post(ctx, hook, payload, timeout); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (n *Notifier) post(ctx context.Context, hook HookConfig, payload []byte, timeout time.Duration) error {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, hook.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if hook.Secret != "" {
		req.Header.Set("X-ChadGI-Signature", Sign(hook.Secret, payload))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the hex-encoded HMAC-SHA256 signature of payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
