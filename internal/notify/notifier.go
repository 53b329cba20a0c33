// Package notify forwards relay events to operator-configured webhook URLs
// as JSON POSTs. Delivery is best-effort: failures are logged, never
// surfaced to the webhook request path.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/sydlexius/tracklink/internal/event"
)

const (
	requestTimeout = 10 * time.Second
	deliverTimeout = 30 * time.Second

	// maxSendRetries counts retries after the first attempt.
	maxSendRetries = 2
	baseDelay      = 500 * time.Millisecond
)

// Notifier delivers relay events to each configured URL.
type Notifier struct {
	urls       []string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a notifier for the given URLs. A notifier with no URLs is
// valid and never subscribes to anything.
func New(urls []string, logger *slog.Logger) *Notifier {
	return NewWithHTTPClient(urls, &http.Client{Timeout: requestTimeout}, logger)
}

// NewWithHTTPClient creates a notifier with a custom HTTP client (for testing).
func NewWithHTTPClient(urls []string, httpClient *http.Client, logger *slog.Logger) *Notifier {
	return &Notifier{
		urls:       urls,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "notifier")),
	}
}

// Register subscribes the notifier to every relay outcome on the bus.
func (n *Notifier) Register(bus *event.Bus) {
	if len(n.urls) == 0 {
		return
	}
	for _, t := range []event.Type{event.TrackLinked, event.TrackUnmatched, event.LookupFailed, event.ReplyFailed} {
		bus.Subscribe(t, n.HandleEvent)
	}
}

// HandleEvent is an event.Handler that posts the event to all configured URLs.
func (n *Notifier) HandleEvent(e event.Event) {
	body, err := json.Marshal(e)
	if err != nil {
		n.logger.Error("encoding event", "type", string(e.Type), "error", err)
		return
	}

	for _, url := range n.urls {
		go n.deliver(url, e, body)
	}
}

func (n *Notifier) deliver(url string, e event.Event, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(maxSendRetries, retry.NewExponential(baseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := n.send(ctx, url, body); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		n.logger.Error("event delivery failed",
			"url", url,
			"type", string(e.Type),
			"error", err,
		)
		return
	}

	n.logger.Debug("event delivered", "url", url, "type", string(e.Type))
}

func (n *Notifier) send(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Tracklink-Notify/1.0")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
