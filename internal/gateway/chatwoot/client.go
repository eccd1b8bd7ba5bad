package chatwoot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/deskbridge/relay/core/config"
	"github.com/deskbridge/relay/internal/relay"
)

// requestTimeout bounds every outbound call; there is no retry.
const requestTimeout = 15 * time.Second

// Client is the destination-platform gateway. It owns contact search and
// creation, conversation resolution, and message delivery against the
// Chatwoot account API.
type Client struct {
	baseURL   string
	accountID string
	apiToken  string
	inboxID   string
	http      *http.Client
	logger    *slog.Logger
}

var _ relay.Gateway = (*Client)(nil)

func NewClient(cfg config.ChatwootConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		accountID: cfg.AccountID,
		apiToken:  cfg.APIToken,
		inboxID:   cfg.InboxID,
		http:      &http.Client{Timeout: requestTimeout},
		logger:    log,
	}
}

func (c *Client) FindOrCreateContact(ctx context.Context, name, identifier string) (string, error) {
	result, err := c.request(ctx, http.MethodGet, "contacts/search?q="+url.QueryEscape(identifier), nil)
	if err != nil {
		// Search failures fall through to creation; a second contact for
		// the same identifier is an accepted outcome.
		c.logger.WarnContext(ctx, "contact search failed", "error", err, "identifier", identifier)
	} else if payload, ok := result["payload"].([]any); ok && len(payload) > 0 {
		if first, ok := payload[0].(map[string]any); ok {
			if id := stringify(first["id"]); id != "" {
				return id, nil
			}
		}
	}

	result, err = c.request(ctx, http.MethodPost, "contacts", map[string]any{
		"name":       name,
		"identifier": identifier,
	})
	if err != nil {
		return "", fmt.Errorf("creating contact: %w", err)
	}
	id, ok := extractID(result)
	if !ok {
		return "", fmt.Errorf("contact response missing id")
	}
	return id, nil
}

func (c *Client) FindOrCreateConversation(ctx context.Context, contactID string, ticket relay.TicketRef) (relay.ConversationRef, error) {
	endpoint := fmt.Sprintf("conversations?inbox_id=%s&source_id=%s", url.QueryEscape(c.inboxID), url.QueryEscape(string(ticket)))
	result, err := c.request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.WarnContext(ctx, "conversation search failed", "error", err, "ticket_ref", string(ticket))
	} else if data, ok := result["data"].(map[string]any); ok {
		if payload, ok := data["payload"].([]any); ok && len(payload) > 0 {
			if first, ok := payload[0].(map[string]any); ok {
				if id := stringify(first["id"]); id != "" {
					return relay.ConversationRef(id), nil
				}
			}
		}
	}

	inboxID, err := strconv.Atoi(c.inboxID)
	if err != nil {
		return "", fmt.Errorf("invalid inbox id %q: %w", c.inboxID, err)
	}

	body := map[string]any{
		"source_id":         string(ticket),
		"inbox_id":          inboxID,
		"contact_id":        numericIfPossible(contactID),
		"custom_attributes": map[string]any{"ticket_id": string(ticket)},
	}
	result, err = c.request(ctx, http.MethodPost, "conversations", body)
	if err != nil {
		return "", fmt.Errorf("creating conversation: %w", err)
	}
	id, ok := extractID(result)
	if !ok {
		return "", fmt.Errorf("conversation response missing id")
	}
	return relay.ConversationRef(id), nil
}

func (c *Client) SendMessage(ctx context.Context, conv relay.ConversationRef, content string) error {
	endpoint := fmt.Sprintf("conversations/%s/messages", string(conv))
	_, err := c.request(ctx, http.MethodPost, endpoint, map[string]any{
		"content":      content,
		"message_type": "incoming",
	})
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

func (c *Client) SendComment(ctx context.Context, ticket relay.TicketRef, body string, tags []string) error {
	return relay.ErrUnsupported
}

// LookupTicketRef reads the ticket reference stored on a conversation,
// checking source_id, then custom_attributes.ticket_id, then
// additional_attributes.source_id.
func (c *Client) LookupTicketRef(ctx context.Context, conv relay.ConversationRef) (relay.TicketRef, error) {
	result, err := c.request(ctx, http.MethodGet, "conversations/"+string(conv), nil)
	if err != nil {
		return "", fmt.Errorf("fetching conversation: %w", err)
	}

	if id := stringify(result["source_id"]); id != "" {
		return relay.TicketRef(id), nil
	}
	if custom, ok := result["custom_attributes"].(map[string]any); ok {
		if id := stringify(custom["ticket_id"]); id != "" {
			return relay.TicketRef(id), nil
		}
	}
	if additional, ok := result["additional_attributes"].(map[string]any); ok {
		if id := stringify(additional["source_id"]); id != "" {
			return relay.TicketRef(id), nil
		}
	}

	return "", relay.ErrNotFound
}

func (c *Client) request(ctx context.Context, method, endpoint string, body any) (map[string]any, error) {
	requestURL := fmt.Sprintf("%s/api/v1/accounts/%s/%s", c.baseURL, c.accountID, endpoint)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_access_token", c.apiToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("%s %s: status %d: %s", method, endpoint, resp.StatusCode, snippet)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return result, nil
}

// extractID pulls an id out of the platform's varying response shapes.
func extractID(result map[string]any) (string, bool) {
	if id := stringify(result["id"]); id != "" {
		return id, true
	}
	for _, key := range []string{"payload", "conversation", "contact"} {
		if nested, ok := result[key].(map[string]any); ok {
			if id := stringify(nested["id"]); id != "" {
				return id, true
			}
		}
	}
	switch data := result["data"].(type) {
	case map[string]any:
		if id := stringify(data["id"]); id != "" {
			return id, true
		}
	case []any:
		if len(data) > 0 {
			if first, ok := data[0].(map[string]any); ok {
				if id := stringify(first["id"]); id != "" {
					return id, true
				}
			}
		}
	}
	return "", false
}

func numericIfPossible(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
