package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/internal/app/service/settlement"
	"github.com/fatflowers/notemarket/pkg/logctx"
)

const maxNotificationBody = 64 << 10

// webhookBody is the subset of the notification body we read. data.id
// arrives as a string or a number depending on the notification version.
type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// @Summary      Payment notification
// @Description  Server-to-server payment notification. Always answers 200 so the provider stops retrying; reconciliation problems are logged.
// @Tags         Webhook
// @Accept       json
// @Produce      plain
// @Param        id       query  string  false  "Payment ID"
// @Param        data.id  query  string  false  "Payment ID"
// @Param        topic    query  string  false  "Notification topic"
// @Param        type     query  string  false  "Notification topic"
// @Success      200  {string}  string  "ok"
// @Router       /payment/webhook [post]
// @Router       /payment/webhook [get]
func ApiPaymentWebhook(mgr settlement.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromCtx(c, log)
		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBody))
		if err != nil {
			lg.Warnw("webhook_body_read_failed", "error", err)
		}

		params := settlement.NotificationParams{
			PaymentID: firstNonEmpty(c.Query("id"), c.Query("data.id")),
			Topic:     firstNonEmpty(c.Query("topic"), c.Query("type")),
			Raw:       notificationRaw(c, raw),
		}
		// Query values win; the body fills whatever the query left out.
		if len(raw) > 0 && (params.PaymentID == "" || params.Topic == "") {
			if b, ok := decodeWebhookBody(raw); ok {
				params.PaymentID = firstNonEmpty(params.PaymentID, b.Data.ID.String())
				params.Topic = firstNonEmpty(params.Topic, b.Type)
			}
		}

		res := mgr.HandleNotification(c, params)
		lg.Infow("webhook_handled",
			"payment_id", res.PaymentID,
			"purchase_id", res.PurchaseID,
			"status", res.Status,
			"applied", res.Applied,
			"skipped", res.Skipped,
			"reason", res.Reason,
		)
		c.String(http.StatusOK, "ok")
	}
}

func decodeWebhookBody(raw []byte) (*webhookBody, bool) {
	var b webhookBody
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&b); err != nil {
		return nil, false
	}
	return &b, true
}

// notificationRaw is what gets stored in the notification log: the body
// when there is one, the query string otherwise.
func notificationRaw(c *gin.Context, body []byte) []byte {
	if len(bytes.TrimSpace(body)) > 0 && json.Valid(body) {
		return body
	}
	q := map[string]string{}
	for k, v := range c.Request.URL.Query() {
		q[k] = strings.Join(v, ",")
	}
	out, _ := json.Marshal(map[string]any{"query": q})
	return out
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

func RegisterPaymentWebhookRoutes(r gin.IRouter, mgr settlement.Manager, log *zap.SugaredLogger) {
	h := ApiPaymentWebhook(mgr, log)
	r.POST("/payment/webhook", h)
	r.GET("/payment/webhook", h)
}
