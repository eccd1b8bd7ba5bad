package relay_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/deskbridge/relay/internal/relay"
)

var _ = Describe("ChatDirector", func() {
	var (
		cache    *relay.IdentityCache
		dedup    *relay.DedupGuard
		chat     *fakeGateway
		desk     *fakeGateway
		director *relay.ChatDirector
		ctx      context.Context
	)

	BeforeEach(func() {
		cache = relay.NewIdentityCache()
		dedup = relay.NewDedupGuard()
		chat = &fakeGateway{ticketRef: "T-100"}
		desk = &fakeGateway{}
		director = relay.NewChatDirector(cache, dedup, chat, desk, nil)
		ctx = context.Background()
	})

	agentReply := func(messageID int) map[string]any {
		return payloadFrom(fmt.Sprintf(`{
			"event": "message_created",
			"id": %d,
			"content": "Thanks!",
			"message_type": "outgoing",
			"conversation": {
				"id": 42,
				"messages": [{"sender_type": "User", "status": "sent"}]
			}
		}`, messageID))
	}

	Describe("agent reply", func() {
		It("looks up the ticket and posts one tagged public comment", func() {
			director.Handle(ctx, agentReply(900))

			lookups := chat.CallsTo("LookupTicketRef")
			Expect(lookups).To(HaveLen(1))
			Expect(lookups[0].Args).To(Equal([]string{"42"}))

			comments := desk.CallsTo("SendComment")
			Expect(comments).To(HaveLen(1))
			Expect(comments[0].Args).To(Equal([]string{"T-100", "Thanks!"}))
			Expect(desk.lastCommentTags).To(Equal(relay.ReservedTags))
		})

		It("records the mapping so later replies skip the lookup", func() {
			director.Handle(ctx, agentReply(900))
			director.Handle(ctx, agentReply(901))

			Expect(chat.CallsTo("LookupTicketRef")).To(HaveLen(1))
			Expect(desk.CallsTo("SendComment")).To(HaveLen(2))

			ticket, ok := cache.ResolveTicket("42")
			Expect(ok).To(BeTrue())
			Expect(ticket).To(Equal(relay.TicketRef("T-100")))
		})

		It("uses a pre-recorded mapping without any chat-platform call", func() {
			cache.Record("T-777", "42")

			director.Handle(ctx, agentReply(900))

			Expect(chat.Calls()).To(BeEmpty())
			comments := desk.CallsTo("SendComment")
			Expect(comments).To(HaveLen(1))
			Expect(comments[0].Args[0]).To(Equal("T-777"))
		})
	})

	Describe("gating", func() {
		It("ignores events other than message_created", func() {
			p := agentReply(900)
			p["event"] = "conversation_updated"

			director.Handle(ctx, p)

			Expect(chat.Calls()).To(BeEmpty())
			Expect(desk.Calls()).To(BeEmpty())
		})

		gateCases := []struct {
			desc   string
			mutate func(p map[string]any)
		}{
			{"contact-authored messages", func(p map[string]any) {
				msgs := p["conversation"].(map[string]any)["messages"].([]any)
				msgs[0].(map[string]any)["sender_type"] = "Contact"
			}},
			{"incoming messages", func(p map[string]any) {
				p["message_type"] = "incoming"
			}},
			{"messages not yet sent", func(p map[string]any) {
				msgs := p["conversation"].(map[string]any)["messages"].([]any)
				msgs[0].(map[string]any)["status"] = "progress"
			}},
		}
		for _, tc := range gateCases {
			tc := tc
			It("drops "+tc.desc, func() {
				p := agentReply(900)
				tc.mutate(p)

				director.Handle(ctx, p)

				Expect(desk.Calls()).To(BeEmpty())
			})
		}

		It("drops when the content is empty", func() {
			p := agentReply(900)
			p["content"] = ""

			director.Handle(ctx, p)

			Expect(desk.Calls()).To(BeEmpty())
		})
	})

	Describe("idempotence", func() {
		It("delivers at most once for a replayed webhook", func() {
			p := agentReply(900)
			director.Handle(ctx, p)
			director.Handle(ctx, p)

			Expect(desk.CallsTo("SendComment")).To(HaveLen(1))
		})
	})

	Describe("failure handling", func() {
		It("drops without panic when no ticket can be found", func() {
			chat.lookupErr = fmt.Errorf("not found")

			director.Handle(ctx, agentReply(900))

			Expect(desk.Calls()).To(BeEmpty())
			_, ok := cache.ResolveTicket("42")
			Expect(ok).To(BeFalse())
		})

		It("keeps the mapping when comment delivery fails", func() {
			desk.commentErr = fmt.Errorf("boom")

			director.Handle(ctx, agentReply(900))

			ticket, ok := cache.ResolveTicket("42")
			Expect(ok).To(BeTrue())
			Expect(ticket).To(Equal(relay.TicketRef("T-100")))
		})
	})
})
