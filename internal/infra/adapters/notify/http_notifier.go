// File: internal/infra/adapters/notify/http_notifier.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"rental-payment-ledger/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*HTTPNotifier)(nil)

// HTTPNotifier implements adapter.Notifier against a transactional-email
// service's JSON send endpoint.
type HTTPNotifier struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

func NewHTTPNotifier(endpoint, apiKey, from string) (*HTTPNotifier, error) {
	if endpoint == "" {
		return nil, errors.New("notifier endpoint empty")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid notifier endpoint: %w", err)
	}
	return &HTTPNotifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (n *HTTPNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	payload := map[string]any{
		"from":    n.from,
		"to":      recipient,
		"subject": subject,
		"text":    body,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notifier http %d", resp.StatusCode)
	}
	return nil
}
