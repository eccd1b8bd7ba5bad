package relay

// TicketRef is the opaque identifier of a helpdesk ticket on the source
// platform. Stable for the ticket's lifetime.
type TicketRef string

// ConversationRef is the opaque identifier of a chat conversation on the
// destination platform. Chatwoot reports it as an integer; it is carried
// as a string everywhere inside the relay.
type ConversationRef string

// Author identifies who wrote the inbound comment or message.
type Author struct {
	ID      string
	Name    string
	IsStaff bool
}

// InboundEvent is the normalized view of a raw webhook payload. It is
// rebuilt per request by the extraction rules and never persisted.
type InboundEvent struct {
	Kind            string
	EventID         string
	TicketRef       TicketRef
	ConversationRef ConversationRef
	Body            string
	Author          Author
	Tags            []string
	SenderRole      string
	MessageKind     string
	Status          string
	Direction       string // platform-reported delivery direction, e.g. "outbound_api"
}
