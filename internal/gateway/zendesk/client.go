package zendesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/deskbridge/relay/core/config"
	"github.com/deskbridge/relay/internal/relay"
)

const requestTimeout = 15 * time.Second

// Client is the source-platform gateway. Its only capability is appending
// public comments to tickets, authenticated with the account email and
// API token.
type Client struct {
	subdomain string
	email     string
	apiToken  string
	baseURL   string // overrides the subdomain URL when set; used by tests
	http      *http.Client
	logger    *slog.Logger
}

var _ relay.Gateway = (*Client)(nil)

func NewClient(cfg config.ZendeskConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		subdomain: cfg.Subdomain,
		email:     cfg.Email,
		apiToken:  cfg.APIToken,
		http:      &http.Client{Timeout: requestTimeout},
		logger:    log,
	}
}

// NewClientWithBaseURL builds a client that talks to an explicit base URL
// instead of the public subdomain endpoint.
func NewClientWithBaseURL(cfg config.ZendeskConfig, baseURL string, log *slog.Logger) *Client {
	c := NewClient(cfg, log)
	c.baseURL = baseURL
	return c
}

func (c *Client) SendComment(ctx context.Context, ticket relay.TicketRef, body string, tags []string) error {
	ticketURL := fmt.Sprintf("%s/api/v2/tickets/%s.json", c.endpoint(), string(ticket))

	payload := map[string]any{
		"ticket": map[string]any{
			"comment": map[string]any{
				"body":   body,
				"public": true,
			},
			"tags": tags,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling comment payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, ticketURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.email+"/token", c.apiToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("updating ticket %s: %w", ticket, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("updating ticket %s: status %d: %s", ticket, resp.StatusCode, snippet)
	}

	return nil
}

func (c *Client) FindOrCreateContact(ctx context.Context, name, identifier string) (string, error) {
	return "", relay.ErrUnsupported
}

func (c *Client) FindOrCreateConversation(ctx context.Context, contactID string, ticket relay.TicketRef) (relay.ConversationRef, error) {
	return "", relay.ErrUnsupported
}

func (c *Client) SendMessage(ctx context.Context, conv relay.ConversationRef, content string) error {
	return relay.ErrUnsupported
}

func (c *Client) LookupTicketRef(ctx context.Context, conv relay.ConversationRef) (relay.TicketRef, error) {
	return "", relay.ErrUnsupported
}

func (c *Client) endpoint() string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return fmt.Sprintf("https://%s.zendesk.com", c.subdomain)
}
