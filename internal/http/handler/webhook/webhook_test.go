package webhook_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/deskbridge/relay/internal/http/handler/webhook"
	"github.com/deskbridge/relay/internal/http/router"
)

// fakeDirector records handled payloads; Handle is invoked on a handler
// goroutine, so access is guarded and specs poll with Eventually.
type fakeDirector struct {
	mu       sync.Mutex
	payloads []map[string]any
}

func (f *fakeDirector) Handle(ctx context.Context, payload map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
}

func (f *fakeDirector) Payloads() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.payloads...)
}

var _ = Describe("Webhook endpoints", func() {
	var (
		ticketDirector *fakeDirector
		chatDirector   *fakeDirector
		engine         *gin.Engine
	)

	BeforeEach(func() {
		ticketDirector = &fakeDirector{}
		chatDirector = &fakeDirector{}
		engine = gin.New()
		router.SetupRoutes(engine,
			webhook.NewZendeskWebhookHandler(ticketDirector),
			webhook.NewChatwootWebhookHandler(chatDirector),
		)
	})

	post := func(path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(rec, req)
		return rec
	}

	Describe("zendesk webhook", func() {
		It("acks with the fixed success shape", func() {
			rec := post("/service-api-webhook/zendesk-webhook", `{"ticket_id": "T-100"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"status": "success"}`))
		})

		It("dispatches the parsed payload in the background", func() {
			post("/service-api-webhook/zendesk-webhook", `{"ticket_id": "T-100"}`)

			Eventually(ticketDirector.Payloads).Should(HaveLen(1))
			Expect(ticketDirector.Payloads()[0]).To(HaveKeyWithValue("ticket_id", "T-100"))
		})

		It("acks malformed bodies and dispatches an empty payload", func() {
			rec := post("/service-api-webhook/zendesk-webhook", `{not json`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"status": "success"}`))
			Eventually(ticketDirector.Payloads).Should(HaveLen(1))
			Expect(ticketDirector.Payloads()[0]).To(BeEmpty())
		})

		It("acks an empty body", func() {
			rec := post("/service-api-webhook/zendesk-webhook", "")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Eventually(ticketDirector.Payloads).Should(HaveLen(1))
		})
	})

	Describe("chatwoot webhook", func() {
		It("acks and dispatches to the chat director", func() {
			rec := post("/service-api-webhook/chatwoot-webhook", `{"event": "message_created", "id": 900}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"status": "success"}`))
			Eventually(chatDirector.Payloads).Should(HaveLen(1))
			Expect(chatDirector.Payloads()[0]).To(HaveKeyWithValue("event", "message_created"))
		})

		It("never routes chat payloads to the ticket director", func() {
			post("/service-api-webhook/chatwoot-webhook", `{"event": "message_created"}`)

			Eventually(chatDirector.Payloads).Should(HaveLen(1))
			Consistently(ticketDirector.Payloads).Should(BeEmpty())
		})
	})

	Describe("health endpoint", func() {
		It("reports healthy with a timestamp", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			engine.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"status":"healthy"`))
			Expect(rec.Body.String()).To(ContainSubstring(`"timestamp"`))
		})
	})
})
