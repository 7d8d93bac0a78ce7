package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
	"tokend/internal/models"
	"tokend/internal/providers"
	"tokend/internal/structures"

	json "github.com/goccy/go-json"
)

// Sink shows a notification to the user.
type Sink interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// LogSink writes notifications to the notify log.
type LogSink struct {
	logger providers.Logger
}

func (s *LogSink) Deliver(_ context.Context, n models.Notification) error {
	s.logger.Infof(providers.TypeNotify, "[%s] %s -> %s: %s", n.ID, n.Type, n.UserID, n.Title)
	return nil
}

// WebhookSink POSTs each notification as JSON to a push gateway.
type WebhookSink struct {
	url    string
	client *http.Client
}

func NewWebhookSink(url string, timeout time.Duration) *WebhookSink {
	return &WebhookSink{url: url, client: &http.Client{Timeout: timeout}}
}

func (s *WebhookSink) Deliver(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}

func NewSink(conf *structures.Config, logger providers.Logger) Sink {
	if conf.Notifications.Sink == "webhook" {
		return NewWebhookSink(conf.Notifications.WebhookUrl, conf.Notifications.Timeout)
	}
	return &LogSink{logger: logger}
}
