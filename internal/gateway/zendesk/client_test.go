package zendesk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/deskbridge/relay/core/config"
	"github.com/deskbridge/relay/internal/gateway/zendesk"
	"github.com/deskbridge/relay/internal/relay"
)

var _ = Describe("Client", func() {
	var (
		received *http.Request
		body     map[string]any
		status   int
		server   *httptest.Server
		client   *zendesk.Client
		ctx      context.Context
	)

	BeforeEach(func() {
		received = nil
		body = nil
		status = http.StatusOK
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received = r.Clone(r.Context())
			json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(status)
		}))
		client = zendesk.NewClientWithBaseURL(config.ZendeskConfig{
			Subdomain: "acme",
			Email:     "agent@example.com",
			APIToken:  "zd-token",
		}, server.URL, nil)
		ctx = context.Background()
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("SendComment", func() {
		It("updates the ticket with a public tagged comment", func() {
			err := client.SendComment(ctx, "T-100", "Thanks!", []string{"from_chatwoot", "no_webhook"})
			Expect(err).NotTo(HaveOccurred())

			Expect(received).NotTo(BeNil())
			Expect(received.Method).To(Equal(http.MethodPut))
			Expect(received.URL.Path).To(Equal("/api/v2/tickets/T-100.json"))

			Expect(body).To(Equal(map[string]any{
				"ticket": map[string]any{
					"comment": map[string]any{
						"body":   "Thanks!",
						"public": true,
					},
					"tags": []any{"from_chatwoot", "no_webhook"},
				},
			}))
		})

		It("authenticates with the token variant of basic auth", func() {
			Expect(client.SendComment(ctx, "T-100", "Thanks!", nil)).To(Succeed())

			user, pass, ok := received.BasicAuth()
			Expect(ok).To(BeTrue())
			Expect(user).To(Equal("agent@example.com/token"))
			Expect(pass).To(Equal("zd-token"))
		})

		It("surfaces non-2xx responses as errors", func() {
			status = http.StatusUnprocessableEntity

			err := client.SendComment(ctx, "T-100", "Thanks!", nil)
			Expect(err).To(MatchError(ContainSubstring("status 422")))
		})
	})

	It("offers no chat-platform operations", func() {
		_, err := client.FindOrCreateContact(ctx, "Alice", "id")
		Expect(err).To(MatchError(relay.ErrUnsupported))

		_, err = client.FindOrCreateConversation(ctx, "301", "T-100")
		Expect(err).To(MatchError(relay.ErrUnsupported))

		Expect(client.SendMessage(ctx, "42", "hi")).To(MatchError(relay.ErrUnsupported))

		_, err = client.LookupTicketRef(ctx, "42")
		Expect(err).To(MatchError(relay.ErrUnsupported))
	})
})
