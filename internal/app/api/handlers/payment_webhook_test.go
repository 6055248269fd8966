package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookRouter(mgr *stubManager) http.Handler {
	r := newRouter(nil)
	RegisterPaymentWebhookRoutes(r, mgr, nopLog)
	return r
}

func TestWebhook_PaymentIDSources(t *testing.T) {
	cases := []struct {
		name   string
		method string
		target string
		body   string
		id     string
		topic  string
	}{
		{"query id", http.MethodPost, "/payment/webhook?id=111&topic=payment", "", "111", "payment"},
		{"query data.id", http.MethodPost, "/payment/webhook?data.id=222&type=payment", "", "222", "payment"},
		{"body numeric id", http.MethodPost, "/payment/webhook", `{"type":"payment","data":{"id":333}}`, "333", "payment"},
		{"body type is the topic", http.MethodPost, "/payment/webhook", `{"type":"merchant_order","data":{"id":"888"}}`, "888", "merchant_order"},
		{"query topic wins over body type", http.MethodPost, "/payment/webhook?id=999&topic=payment", `{"type":"merchant_order","data":{"id":"999"}}`, "999", "payment"},
		{"body type fills missing query topic", http.MethodPost, "/payment/webhook?id=121", `{"type":"merchant_order"}`, "121", "merchant_order"},
		{"body string id", http.MethodPost, "/payment/webhook", `{"data":{"id":"444"}}`, "444", ""},
		{"query wins over body", http.MethodPost, "/payment/webhook?id=555", `{"data":{"id":"666"}}`, "555", ""},
		{"get", http.MethodGet, "/payment/webhook?id=777&topic=merchant_order", "", "777", "merchant_order"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mgr := &stubManager{}
			w := serve(t, webhookRouter(mgr), tc.method, tc.target, tc.body)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "ok", w.Body.String())
			require.Len(t, mgr.notifications, 1)
			assert.Equal(t, tc.id, mgr.notifications[0].PaymentID)
			assert.Equal(t, tc.topic, mgr.notifications[0].Topic)
		})
	}
}

func TestWebhook_GarbageBodyStillOK(t *testing.T) {
	mgr := &stubManager{}
	w := serve(t, webhookRouter(mgr), http.MethodPost, "/payment/webhook", "not json")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	require.Len(t, mgr.notifications, 1)
	assert.Empty(t, mgr.notifications[0].PaymentID)
	assert.JSONEq(t, `{"query":{}}`, string(mgr.notifications[0].Raw))
}

func TestWebhook_RawKeepsJSONBody(t *testing.T) {
	mgr := &stubManager{}
	body := `{"action":"payment.updated","data":{"id":"9"}}`
	serve(t, webhookRouter(mgr), http.MethodPost, "/payment/webhook", body)

	require.Len(t, mgr.notifications, 1)
	assert.JSONEq(t, body, string(mgr.notifications[0].Raw))
}

func TestWebhook_RawFromQuery(t *testing.T) {
	mgr := &stubManager{}
	serve(t, webhookRouter(mgr), http.MethodGet, "/payment/webhook?id=5&topic=payment", "")

	require.Len(t, mgr.notifications, 1)
	assert.JSONEq(t, `{"query":{"id":"5","topic":"payment"}}`, string(mgr.notifications[0].Raw))
}
