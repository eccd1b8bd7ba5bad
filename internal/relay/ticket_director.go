package relay

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/deskbridge/relay/common/logger"
)

// TicketDirector orchestrates the helpdesk -> chat direction: a ticket
// comment webhook becomes an incoming message on the mapped conversation.
// Failures never propagate; the webhook sender already got its ack.
type TicketDirector struct {
	cache  *IdentityCache
	dedup  *DedupGuard
	dest   Gateway
	logger *slog.Logger
}

func NewTicketDirector(cache *IdentityCache, dedup *DedupGuard, dest Gateway, log *slog.Logger) *TicketDirector {
	if log == nil {
		log = slog.Default()
	}
	return &TicketDirector{
		cache:  cache,
		dedup:  dedup,
		dest:   dest,
		logger: log,
	}
}

func (d *TicketDirector) Handle(ctx context.Context, payload map[string]any) {
	sc := logger.StartSpan(ctx, "relay.handle_ticket_event", trace.WithSpanKind(trace.SpanKindConsumer))
	defer sc.End()
	ctx = sc.Context()

	evt := ExtractTicketEvent(payload)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Direction: logger.Ptr("zendesk->chatwoot"),
		TicketRef: logger.Ptr(string(evt.TicketRef)),
		EventID:   logger.Ptr(evt.EventID),
		Component: "relay.director.ticket",
	})

	// Dedup on the comment's own identifier, not the ticket id.
	if d.dedup.SeenAndRecord(evt.EventID) {
		d.logger.DebugContext(ctx, "duplicate comment, skipping")
		return
	}

	if evt.TicketRef == "" || evt.Body == "" {
		d.logger.DebugContext(ctx, "incomplete ticket webhook, skipping")
		return
	}

	if IsRelayOriginated(evt) {
		d.logger.InfoContext(ctx, "relay echo detected, skipping")
		return
	}

	// Composite identifier so the same author on different tickets gets
	// distinct destination contacts.
	identifier := fmt.Sprintf("zendesk:%s:%s", evt.Author.ID, evt.TicketRef)
	contactID, err := d.dest.FindOrCreateContact(ctx, evt.Author.Name, identifier)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to resolve contact", "error", err, "identifier", identifier)
		sc.RecordError(err)
		return
	}

	conv, ok := d.cache.ResolveConversation(evt.TicketRef)
	if !ok {
		conv, err = d.dest.FindOrCreateConversation(ctx, contactID, evt.TicketRef)
		if err != nil {
			d.logger.ErrorContext(ctx, "failed to resolve conversation", "error", err)
			sc.RecordError(err)
			return
		}
		d.cache.Record(evt.TicketRef, conv)
	}

	if err := d.dest.SendMessage(ctx, conv, evt.Body); err != nil {
		d.logger.ErrorContext(ctx, "failed to deliver message", "error", err,
			"conversation_ref", string(conv))
		sc.RecordError(err)
		return
	}

	d.logger.InfoContext(ctx, "relayed ticket comment",
		"conversation_ref", string(conv),
		"body", logger.Truncate(evt.Body, 120))
}
