package relay

// ReservedTags are attached to every comment the relay posts back to the
// helpdesk. Any inbound event carrying one of them is an echo of the
// relay's own previous write and must be dropped.
var ReservedTags = []string{"from_chatwoot", "api_integration", "no_webhook"}

// IsRelayOriginated reports whether an inbound event originated from the
// relay itself rather than from a genuine human or agent action. Pure
// predicate; evaluated before any identity resolution or delivery.
func IsRelayOriginated(evt InboundEvent) bool {
	for _, tag := range evt.Tags {
		for _, reserved := range ReservedTags {
			if tag == reserved {
				return true
			}
		}
	}
	if evt.Author.IsStaff {
		return true
	}
	return evt.Direction == "outbound_api"
}
