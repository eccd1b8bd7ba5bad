package relay

import (
	"math"
	"strconv"
	"strings"
)

// Extraction is modeled as ordered rule lists evaluated first-match-wins,
// keeping each field's precedence auditable in isolation. Payloads arrive
// as decoded JSON objects; all id-ish values are stringified because the
// platforms mix integer and string identifiers freely.

const ticketSubjectPrefix = "zen:ticket:"

type stringRule func(p map[string]any) (string, bool)

func firstMatch(p map[string]any, rules []stringRule) string {
	for _, rule := range rules {
		if v, ok := rule(p); ok {
			return v
		}
	}
	return ""
}

var ticketRefRules = []stringRule{
	func(p map[string]any) (string, bool) {
		return nonEmpty(stringify(p["ticket_id"]))
	},
	func(p map[string]any) (string, bool) {
		return nonEmpty(stringify(getMap(p, "detail")["id"]))
	},
	func(p map[string]any) (string, bool) {
		subject, _ := p["subject"].(string)
		if !strings.HasPrefix(subject, ticketSubjectPrefix) {
			return "", false
		}
		parts := strings.Split(subject, ":")
		return nonEmpty(parts[len(parts)-1])
	},
}

var commentBodyRules = []stringRule{
	func(p map[string]any) (string, bool) {
		s, _ := p["latest_comment"].(string)
		return nonEmpty(strings.TrimSpace(s))
	},
	func(p map[string]any) (string, bool) {
		s, _ := getMap(getMap(p, "event"), "comment")["body"].(string)
		return nonEmpty(strings.TrimSpace(s))
	},
}

type authorRule func(p map[string]any) (Author, bool)

var authorRules = []authorRule{
	func(p map[string]any) (Author, bool) {
		raw := getMap(getMap(getMap(p, "event"), "comment"), "author")
		if len(raw) == 0 {
			return Author{}, false
		}
		return authorFrom(raw), true
	},
	func(p map[string]any) (Author, bool) {
		raw := getMap(p, "requester")
		if len(raw) == 0 {
			return Author{}, false
		}
		return authorFrom(raw), true
	},
	func(p map[string]any) (Author, bool) {
		id := stringify(getMap(p, "detail")["requester_id"])
		if id == "" {
			return Author{}, false
		}
		return Author{ID: id, Name: "User " + id}, true
	},
	func(p map[string]any) (Author, bool) {
		return Author{ID: "unknown", Name: "Unknown User"}, true
	},
}

func authorFrom(raw map[string]any) Author {
	id := stringify(raw["id"])
	name, _ := raw["name"].(string)
	if name == "" {
		name = "User " + id
	}
	isStaff, _ := raw["is_staff"].(bool)
	return Author{ID: id, Name: name, IsStaff: isStaff}
}

// ExtractTicketEvent normalizes a helpdesk webhook payload. The dedup key
// is the comment's own identifier, not the ticket id.
func ExtractTicketEvent(p map[string]any) InboundEvent {
	author, _ := func() (Author, bool) {
		for _, rule := range authorRules {
			if a, ok := rule(p); ok {
				return a, true
			}
		}
		return Author{}, false
	}()

	direction, _ := p["direction"].(string)

	return InboundEvent{
		EventID:   stringify(getMap(getMap(p, "event"), "comment")["id"]),
		TicketRef: TicketRef(firstMatch(p, ticketRefRules)),
		Body:      firstMatch(p, commentBodyRules),
		Author:    author,
		Tags:      extractTags(p),
		Direction: direction,
	}
}

// ExtractChatEvent normalizes a chat-platform webhook payload. Sender role
// and delivery status prefer the most recent message sub-object nested
// under the conversation, falling back to root-level fields of the same
// name; content, id, and message_type live at the root.
func ExtractChatEvent(p map[string]any) InboundEvent {
	kind, _ := p["event"].(string)
	content, _ := p["content"].(string)
	messageKind, _ := p["message_type"].(string)

	conversation := getMap(p, "conversation")
	convRef := stringify(conversation["id"])
	if convRef == "" {
		if root := stringify(p["id"]); isDigits(root) {
			convRef = root
		}
	}

	senderRole := ""
	status := ""
	if messages, ok := conversation["messages"].([]any); ok && len(messages) > 0 {
		if latest, ok := messages[0].(map[string]any); ok {
			senderRole, _ = latest["sender_type"].(string)
			status, _ = latest["status"].(string)
		}
	}
	if senderRole == "" {
		senderRole, _ = p["sender_type"].(string)
	}
	if status == "" {
		status, _ = p["status"].(string)
	}

	return InboundEvent{
		Kind:            kind,
		EventID:         stringify(p["id"]),
		ConversationRef: ConversationRef(convRef),
		Body:            content,
		SenderRole:      senderRole,
		MessageKind:     messageKind,
		Status:          status,
	}
}

// extractTags reads the payload tag set, tolerating both a list and a
// bare string.
func extractTags(p map[string]any) []string {
	switch raw := p["tags"].(type) {
	case string:
		return []string{raw}
	case []any:
		tags := make([]string, 0, len(raw))
		for _, t := range raw {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
		return tags
	default:
		return nil
	}
}

func getMap(p map[string]any, key string) map[string]any {
	if p == nil {
		return nil
	}
	m, _ := p[key].(map[string]any)
	return m
}

// stringify renders an id-ish JSON value as a string. JSON numbers decode
// as float64; integral values are rendered without a fraction.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}

func nonEmpty(s string) (string, bool) {
	return s, s != ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
