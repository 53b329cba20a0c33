// Package telegram is a minimal Bot API client covering the calls the relay
// needs: sending replies and editing captions.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://api.telegram.org"
	maxAttempts      = 3
	maxResponseBytes = 1 << 20
)

// APIError is a Bot API rejection. Code mirrors the HTTP status Telegram
// reports in the response envelope.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("telegram %s: %s (code %d, retry after %s)", e.Method, e.Description, e.Code, e.RetryAfter)
	}
	return fmt.Sprintf("telegram %s: %s (code %d)", e.Method, e.Description, e.Code)
}

func (e *APIError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Client talks to the Telegram Bot API for a single bot token.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	baseURL    string
	token      string
}

// New creates a Telegram client with default HTTP settings. Sends are paced
// to one message per second, Telegram's per-chat guidance.
func New(token string, logger *slog.Logger) *Client {
	return NewWithBaseURL(token, defaultBaseURL, logger)
}

// NewWithBaseURL creates a Telegram client against a custom API base URL
// (for testing).
func NewWithBaseURL(token, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		logger:     logger.With(slog.String("integration", "telegram")),
		baseURL:    baseURL,
		token:      token,
	}
}

// SendMessage posts text to a chat with link previews disabled, so the reply
// stays a one-liner in the channel.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.invoke(ctx, "sendMessage", sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
}

// EditMessageCaption replaces the caption of an existing message.
func (c *Client) EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string) error {
	return c.invoke(ctx, "editMessageCaption", editCaptionRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Caption:   caption,
	})
}

// invoke calls a Bot API method, retrying transport failures, 5xx responses
// and rate limits. When Telegram supplies retry_after the next attempt waits
// exactly that long, otherwise the delay doubles per attempt.
func (c *Client) invoke(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			if err := sleep(ctx, retryDelay(lastErr, attempt)); err != nil {
				return err
			}
			c.logger.Warn("retrying telegram call",
				"method", method,
				"attempt", attempt+1,
				"error", lastErr,
			)
		}

		lastErr = c.post(ctx, method, body)
		if lastErr == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(lastErr, &apiErr) && !apiErr.retryable() {
			return lastErr
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", method, maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, method string, body []byte) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limit: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var envelope apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if !envelope.OK {
		apiErr := &APIError{Method: method, Code: envelope.ErrorCode, Description: envelope.Description}
		if envelope.Parameters != nil && envelope.Parameters.RetryAfter > 0 {
			apiErr.RetryAfter = time.Duration(envelope.Parameters.RetryAfter) * time.Second
		}
		return apiErr
	}
	return nil
}

// retryDelay prefers the server-mandated pause over the doubling fallback.
func retryDelay(err error, attempt int) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}
	return time.Duration(1<<uint(attempt-1)) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
