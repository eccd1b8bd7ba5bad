package relay

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/deskbridge/relay/common/logger"
)

// eventMessageCreated is the only chat-platform event kind the relay acts on.
const eventMessageCreated = "message_created"

// ChatDirector orchestrates the chat -> helpdesk direction: an agent reply
// on a conversation becomes a public ticket comment, tagged with the
// reserved set so the other direction drops the echo.
type ChatDirector struct {
	cache  *IdentityCache
	dedup  *DedupGuard
	chat   Gateway // conversation lookups on the chat platform
	desk   Gateway // comment delivery on the helpdesk platform
	logger *slog.Logger
}

func NewChatDirector(cache *IdentityCache, dedup *DedupGuard, chat, desk Gateway, log *slog.Logger) *ChatDirector {
	if log == nil {
		log = slog.Default()
	}
	return &ChatDirector{
		cache:  cache,
		dedup:  dedup,
		chat:   chat,
		desk:   desk,
		logger: log,
	}
}

func (d *ChatDirector) Handle(ctx context.Context, payload map[string]any) {
	evt := ExtractChatEvent(payload)
	if evt.Kind != eventMessageCreated {
		return
	}

	sc := logger.StartSpan(ctx, "relay.handle_chat_event", trace.WithSpanKind(trace.SpanKindConsumer))
	defer sc.End()
	ctx = sc.Context()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Direction:       logger.Ptr("chatwoot->zendesk"),
		ConversationRef: logger.Ptr(string(evt.ConversationRef)),
		EventID:         logger.Ptr(evt.EventID),
		Component:       "relay.director.chat",
	})

	if evt.ConversationRef == "" || evt.Body == "" {
		d.logger.DebugContext(ctx, "incomplete chat webhook, skipping")
		return
	}

	// Only agent-authored, outgoing, sent messages are relayed.
	if evt.SenderRole != "User" || evt.MessageKind != "outgoing" || evt.Status != "sent" {
		d.logger.DebugContext(ctx, "message not relayable, skipping",
			"sender_type", evt.SenderRole,
			"message_type", evt.MessageKind,
			"status", evt.Status)
		return
	}

	if d.dedup.SeenAndRecord(evt.EventID) {
		d.logger.DebugContext(ctx, "duplicate message, skipping")
		return
	}

	ticket, ok := d.cache.ResolveTicket(evt.ConversationRef)
	if !ok {
		var err error
		ticket, err = d.chat.LookupTicketRef(ctx, evt.ConversationRef)
		if err != nil {
			d.logger.WarnContext(ctx, "no ticket mapping for conversation", "error", err)
			sc.RecordError(err)
			return
		}
		d.cache.Record(ticket, evt.ConversationRef)
	}

	if err := d.desk.SendComment(ctx, ticket, evt.Body, ReservedTags); err != nil {
		d.logger.ErrorContext(ctx, "failed to deliver comment", "error", err,
			"ticket_ref", string(ticket))
		sc.RecordError(err)
		return
	}

	// Idempotent with the SeenAndRecord insert above.
	d.dedup.Record(evt.EventID)

	d.logger.InfoContext(ctx, "relayed agent reply",
		"ticket_ref", string(ticket),
		"body", logger.Truncate(evt.Body, 120))
}
