package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSendFailed signals the provider rejected or never received an
// outbound message.
var ErrSendFailed = errors.New("transport send failed")

// Messenger delivers chat replies back to the customer.
type Messenger interface {
	// Send pushes one message and returns the provider-assigned sid.
	Send(ctx context.Context, to, body string) (string, error)
}

// MessagingConfig carries the provider account credentials.
type MessagingConfig struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	FromNumber string
	Timeout    time.Duration
}

// MessagingClient sends messages through the provider's REST API.
type MessagingClient struct {
	cfg    MessagingConfig
	client *http.Client
}

// NewMessagingClient builds a messaging client with a bounded timeout.
func NewMessagingClient(cfg MessagingConfig) *MessagingClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &MessagingClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// DryRunMessenger logs instead of sending, for development without
// provider credentials. Every send succeeds with a generated sid.
type DryRunMessenger struct {
	Log zerolog.Logger
}

// Send implements Messenger without network calls.
func (d DryRunMessenger) Send(_ context.Context, to, body string) (string, error) {
	sid := "dry-" + uuid.NewString()
	d.Log.Info().Str("to", to).Str("sid", sid).Msg("dry-run send: " + body)
	return sid, nil
}

// Send implements Messenger via the provider's create-message call.
func (c *MessagingClient) Send(ctx context.Context, to, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.cfg.BaseURL, c.cfg.AccountSID)

	form := url.Values{}
	form.Set("From", "whatsapp:"+c.cfg.FromNumber)
	form.Set("To", to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: provider returned %d", ErrSendFailed, resp.StatusCode)
	}

	var payload struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrSendFailed, err)
	}
	return payload.SID, nil
}
