package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/akratos/surebet/internal/pkg/models"
)

// WebhookPoster POSTs the full opportunity list as JSON to a configured URL,
// typically an automation endpoint (n8n or similar).
type WebhookPoster struct {
	url    string
	client *http.Client
}

func NewWebhookPoster(url string) *WebhookPoster {
	return &WebhookPoster{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Post sends the opportunities in one request. A non-2xx response is an
// error; the caller decides whether to retry.
func (p *WebhookPoster) Post(ctx context.Context, opps []models.Opportunity) error {
	body, err := json.Marshal(opps)
	if err != nil {
		return fmt.Errorf("failed to marshal opportunities: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
