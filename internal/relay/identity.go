package relay

import "sync"

// IdentityCache is the bidirectional ticket<->conversation mapping shared
// by both relay directions. Entries live for the process lifetime; there
// is no eviction. Record is last-write-wins on either side, so two
// handlers racing to resolve the same unseen ticket settle on whichever
// Record lands last.
type IdentityCache struct {
	mu           sync.RWMutex
	ticketToConv map[TicketRef]ConversationRef
	convToTicket map[ConversationRef]TicketRef
}

func NewIdentityCache() *IdentityCache {
	return &IdentityCache{
		ticketToConv: make(map[TicketRef]ConversationRef),
		convToTicket: make(map[ConversationRef]TicketRef),
	}
}

// Record stores the mapping in both directions atomically.
func (c *IdentityCache) Record(ticket TicketRef, conv ConversationRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticketToConv[ticket] = conv
	c.convToTicket[conv] = ticket
}

// ResolveConversation returns the conversation mapped to a ticket, if known.
func (c *IdentityCache) ResolveConversation(ticket TicketRef) (ConversationRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conv, ok := c.ticketToConv[ticket]
	return conv, ok
}

// ResolveTicket returns the ticket mapped to a conversation, if known.
func (c *IdentityCache) ResolveTicket(conv ConversationRef) (TicketRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ticket, ok := c.convToTicket[conv]
	return ticket, ok
}
