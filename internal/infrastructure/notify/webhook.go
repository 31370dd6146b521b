package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"orderflow-backend/internal/domain"
	"orderflow-backend/pkg/logger"

	"github.com/goccy/go-json"
)

const (
	SignatureHeader = "X-Orderflow-Signature"
	webhookAttempts = 3
)

// WebhookSink POSTs each notification as JSON. A nil *WebhookSink is a
// disabled sink.
type WebhookSink struct {
	url        string
	secret     []byte
	httpClient *http.Client
	backoff    time.Duration
}

// NewWebhookSink returns nil when url is empty.
func NewWebhookSink(url, secret string, timeout time.Duration) *WebhookSink {
	if url == "" {
		logger.Info().Msg("notification webhook not configured, webhook sink disabled")
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookSink{
		url:        url,
		secret:     []byte(secret),
		httpClient: &http.Client{Timeout: timeout},
		backoff:    time.Second,
	}
}

// WithBackoff overrides the base delay between attempts.
func (s *WebhookSink) WithBackoff(d time.Duration) *WebhookSink {
	if s != nil {
		s.backoff = d
	}
	return s
}

func (s *WebhookSink) Name() string { return "webhook" }

type webhookPayload struct {
	Event        string              `json:"event"`
	SentAt       time.Time           `json:"sentAt"`
	Notification domain.Notification `json:"notification"`
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Publish retries transport errors, 429 and 5xx. Other 4xx responses are
// treated as permanent.
func (s *WebhookSink) Publish(ctx context.Context, n domain.Notification) error {
	if s == nil {
		return nil
	}

	body, err := json.Marshal(webhookPayload{
		Event:        "notification." + string(n.Scope),
		SentAt:       time.Now().UTC(),
		Notification: n,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	signature := Sign(s.secret, body)

	var lastErr error
	for attempt := 0; attempt < webhookAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * s.backoff):
			}
		}

		retry, err := s.send(ctx, body, signature)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return lastErr
}

func (s *WebhookSink) send(ctx context.Context, body []byte, signature string) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if len(s.secret) > 0 {
		req.Header.Set(SignatureHeader, "sha256="+signature)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err = fmt.Errorf("webhook error (status %d): %s", resp.StatusCode, string(msg))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return false, err
	}
	return true, err
}
