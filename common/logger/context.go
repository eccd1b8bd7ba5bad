package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, so a director can tag the whole handling
// chain once (direction, ticket_ref, ...) and every log line picks the tags up.
type LogFields struct {
	TicketRef       *string // external helpdesk ticket identifier
	ConversationRef *string // chat platform conversation identifier
	EventID         *string // inbound webhook event/comment/message identifier
	RequestID       *string // snowflake id assigned by the HTTP layer
	Direction       *string // relay direction, e.g. "zendesk->chatwoot"
	Component       string  // component name, e.g. "relay.director.ticket"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.TicketRef != nil {
		result.TicketRef = next.TicketRef
	}
	if next.ConversationRef != nil {
		result.ConversationRef = next.ConversationRef
	}
	if next.EventID != nil {
		result.EventID = next.EventID
	}
	if next.RequestID != nil {
		result.RequestID = next.RequestID
	}
	if next.Direction != nil {
		result.Direction = next.Direction
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{TicketRef: logger.Ptr(ref)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like comment bodies.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
