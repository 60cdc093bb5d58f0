// Package notify delivers push notifications about available updates.
//
// The default transport is ntfy.sh: a plain HTTP POST to
// https://ntfy.sh/{topic} with the message as the body. Anyone subscribed to
// the topic receives the push.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrTransport is returned when the notification service rejected or never
// received a message. Failures are per-message and never abort a check pass.
var ErrTransport = errors.New("notification transport failed")

const defaultServer = "https://ntfy.sh"

// defaultTimeout bounds a single push so a slow notification server cannot
// stall the scheduler.
const defaultTimeout = 10 * time.Second

// Notifier sends messages to a topic. Send carries update notifications,
// SendError carries failures of the check machinery itself.
type Notifier interface {
	Send(ctx context.Context, topic, message string) error
	SendError(ctx context.Context, topic, message string) error
}

// Ntfy publishes messages to an ntfy server.
type Ntfy struct {
	server string
	client *http.Client
}

// NtfyOption configures an Ntfy notifier.
type NtfyOption func(*Ntfy)

// WithServer overrides the ntfy server URL (default https://ntfy.sh).
func WithServer(url string) NtfyOption {
	return func(n *Ntfy) {
		n.server = strings.TrimRight(url, "/")
	}
}

// NewNtfy creates an ntfy.sh notifier.
func NewNtfy(opts ...NtfyOption) *Ntfy {
	n := &Ntfy{
		server: defaultServer,
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Send publishes an update notification to the topic.
func (n *Ntfy) Send(ctx context.Context, topic, message string) error {
	return n.publish(ctx, topic, message, "Updates available", "arrow_up")
}

// SendError publishes a failure notification to the topic so the operator
// learns about broken checks without reading logs.
func (n *Ntfy) SendError(ctx context.Context, topic, message string) error {
	return n.publish(ctx, topic, message, "Error while checking for updates", "x")
}

func (n *Ntfy) publish(ctx context.Context, topic, message, title, tags string) error {
	url := fmt.Sprintf("%s/%s", n.server, topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Title", title)
	req.Header.Set("Tags", tags)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: server returned %s: %s", ErrTransport, resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
