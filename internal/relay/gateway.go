package relay

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by a Gateway operation the platform does not offer.
var ErrUnsupported = errors.New("operation not supported by platform")

// ErrNotFound is returned when a remote lookup finds no matching record.
var ErrNotFound = errors.New("not found")

// Gateway is the capability set a platform adapter offers the relay.
// Both platform adapters implement the full interface and return
// ErrUnsupported for the operations their platform lacks; the directors
// are wired so only supported operations are ever invoked.
type Gateway interface {
	// FindOrCreateContact resolves a destination contact by its composite
	// identifier, creating it when absent. Returns the platform contact id.
	FindOrCreateContact(ctx context.Context, name, identifier string) (string, error)

	// FindOrCreateConversation resolves the destination conversation for a
	// ticket by inbox + source id, creating it when absent.
	FindOrCreateConversation(ctx context.Context, contactID string, ticket TicketRef) (ConversationRef, error)

	// SendMessage delivers content as an inbound message on a conversation.
	SendMessage(ctx context.Context, conv ConversationRef, content string) error

	// SendComment appends a public comment to a ticket, tagged so the echo
	// webhook is recognized and dropped.
	SendComment(ctx context.Context, ticket TicketRef, body string, tags []string) error

	// LookupTicketRef recovers the ticket reference stored on a conversation.
	LookupTicketRef(ctx context.Context, conv ConversationRef) (TicketRef, error)
}
