package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/datatypes"

	"github.com/fatflowers/notemarket/internal/app/service/ledger"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/internal/platform/mercadopago"
	"github.com/fatflowers/notemarket/pkg/logctx"
	"github.com/fatflowers/notemarket/pkg/types"
)

const (
	sourceReturn  = "return"
	sourceWebhook = "webhook"
	sourcePoll    = "poll"
)

// ReturnParams is what the browser brings back from the checkout.
type ReturnParams struct {
	DocumentID        uint64          `json:"document_id"`
	PaymentID         string          `json:"payment_id,omitempty"`
	ExternalReference string          `json:"external_reference,omitempty"`
	Caller            *types.Identity `json:"-"`
}

type ReturnResult struct {
	Approved   bool                 `json:"approved"`
	PurchaseID uint64               `json:"purchase_id,omitempty"`
	Status     types.PurchaseStatus `json:"status,omitempty"`
	Notice     types.Notice         `json:"notice,omitempty"`
}

// NotificationParams is a server-to-server notification. Topic is empty
// when the sender did not state one.
type NotificationParams struct {
	PaymentID string
	Topic     string
	Raw       []byte
}

type NotificationResult struct {
	Skipped    bool                 `json:"skipped,omitempty"`
	PaymentID  string               `json:"payment_id,omitempty"`
	PurchaseID uint64               `json:"purchase_id,omitempty"`
	Status     types.PurchaseStatus `json:"status,omitempty"`
	Applied    bool                 `json:"applied"`
	Reason     string               `json:"reason,omitempty"`
}

type SyncResult struct {
	Observed bool             `json:"observed"`
	Purchase *models.Purchase `json:"purchase"`
}

// HandleReturn reconciles a browser return. Provider failures degrade to an
// unknown status; the purchase is then left as it was.
func (e *Engine) HandleReturn(ctx context.Context, p ReturnParams) *ReturnResult {
	lg := logctx.FromCtx(ctx, e.log).With("document_id", p.DocumentID)
	token := e.settings.PlatformToken

	var pay *mercadopago.Payment
	if p.PaymentID != "" {
		got, err := e.provider.GetPayment(ctx, token, p.PaymentID)
		if err != nil {
			lg.Warnw("return_get_payment_failed", "payment_id", p.PaymentID, "err", err)
		} else {
			pay = got
		}
	}
	if pay == nil && p.ExternalReference != "" {
		found, err := e.provider.SearchPaymentsByExternalReference(ctx, token, p.ExternalReference)
		if err != nil {
			lg.Warnw("return_search_payments_failed", "external_reference", p.ExternalReference, "err", err)
		} else {
			pay = found.First()
		}
	}

	ref := p.ExternalReference
	var update ledger.PaymentUpdate
	if pay != nil {
		if pay.ExternalReference != "" {
			ref = pay.ExternalReference
		}
		update.PaymentID = pay.ID.String()
		update.Status = types.PurchaseStatus(pay.Status)
	}

	res := &ReturnResult{Status: update.Status}
	row, err := e.apply(ctx, sourceReturn, ref, update)
	if err != nil {
		lg.Infow("return_not_applied", "external_reference", ref, "err", err)
	}
	if row != nil {
		res.PurchaseID = row.ID
		if res.Status == "" {
			res.Status = row.Status
		}
	}
	res.Approved = res.Status.Approved()
	if !res.Approved {
		res.Notice = types.NoticePaymentRegistered
	}

	var userID *string
	if p.Caller.Authenticated() {
		userID = lo.ToPtr(p.Caller.UserID)
	}
	e.record(ctx, models.PaymentNotificationSourceReturn, userID, update.PaymentID, res.PurchaseID, p, res, err)
	return res
}

// HandleNotification reconciles a webhook. It never fails: every outcome is
// logged, recorded and acknowledged by the caller.
func (e *Engine) HandleNotification(ctx context.Context, p NotificationParams) *NotificationResult {
	lg := logctx.FromCtx(ctx, e.log).With("payment_id", p.PaymentID, "topic", p.Topic)
	res := &NotificationResult{PaymentID: p.PaymentID}

	var applyErr error
	defer func() {
		raw := datatypes.JSON(p.Raw)
		if !json.Valid(raw) {
			raw = lo.Must(json.Marshal(map[string]string{"payment_id": p.PaymentID, "topic": p.Topic}))
		}
		e.recordRaw(ctx, models.PaymentNotificationSourceWebhook, nil, p.PaymentID, res.PurchaseID, raw, res, applyErr)
	}()

	switch {
	case p.Topic != "" && p.Topic != "payment":
		res.Skipped, res.Reason = true, "topic"
		e.metrics.Reconciled(sourceWebhook, "skipped")
		lg.Debugw("webhook_skipped_topic")
		return res
	case p.PaymentID == "":
		res.Skipped, res.Reason = true, "missing_payment_id"
		e.metrics.Reconciled(sourceWebhook, "skipped")
		lg.Infow("webhook_without_payment_id")
		return res
	}

	pay, err := e.provider.GetPayment(ctx, e.settings.PlatformToken, p.PaymentID)
	if err != nil {
		applyErr = err
		res.Reason = "fetch_failed"
		e.metrics.Reconciled(sourceWebhook, "fetch_failed")
		lg.Warnw("webhook_get_payment_failed", "err", err)
		return res
	}

	res.Status = types.PurchaseStatus(lo.CoalesceOrEmpty(pay.Status, string(types.PurchaseStatusUnknown)))
	row, err := e.apply(ctx, sourceWebhook, pay.ExternalReference, ledger.PaymentUpdate{
		PaymentID: lo.CoalesceOrEmpty(pay.ID.String(), p.PaymentID),
		Status:    res.Status,
	})
	if err != nil {
		applyErr = err
		res.Reason = reasonOf(err)
		lg.Infow("webhook_not_applied", "external_reference", pay.ExternalReference, "err", err)
		return res
	}
	res.PurchaseID, res.Applied = row.ID, true
	return res
}

// SyncPurchase polls the provider for a purchase by its external reference
// and applies the newest payment found. Observed is false when the
// provider knows no payment for it yet.
func (e *Engine) SyncPurchase(ctx context.Context, purchaseID uint64) (*SyncResult, error) {
	p, err := e.ledger.Get(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("purchase %d: %w", purchaseID, ErrNotFound)
		}
		return nil, err
	}
	ref := FormatReference(p.ID)
	found, err := e.provider.SearchPaymentsByExternalReference(ctx, e.settings.PlatformToken, ref)
	if err != nil {
		e.metrics.Reconciled(sourcePoll, "fetch_failed")
		return &SyncResult{Purchase: p}, fmt.Errorf("search payments for %s: %w", ref, err)
	}
	pay := found.First()
	if pay == nil {
		e.metrics.Reconciled(sourcePoll, "not_found")
		return &SyncResult{Purchase: p}, nil
	}

	row, err := e.apply(ctx, sourcePoll, ref, ledger.PaymentUpdate{
		PaymentID: pay.ID.String(),
		Status:    types.PurchaseStatus(lo.CoalesceOrEmpty(pay.Status, string(types.PurchaseStatusUnknown))),
	})
	e.recordRaw(ctx, models.PaymentNotificationSourcePoll, nil, pay.ID.String(), p.ID, lo.Must(json.Marshal(pay)), row, err)
	if err != nil {
		return &SyncResult{Observed: true, Purchase: p}, err
	}
	return &SyncResult{Observed: true, Purchase: row}, nil
}

// apply is the single write path shared by every signal. Malformed
// references and unknown purchases perform no write.
func (e *Engine) apply(ctx context.Context, source, ref string, u ledger.PaymentUpdate) (*models.Purchase, error) {
	id, err := ParseReference(ref)
	if err != nil {
		e.metrics.Reconciled(source, "malformed")
		return nil, err
	}
	row, err := e.ledger.ApplyPayment(ctx, id, u)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			e.metrics.Reconciled(source, "unknown_purchase")
			return nil, fmt.Errorf("purchase %d: %w", id, ErrNotFound)
		}
		e.metrics.Reconciled(source, "error")
		return nil, err
	}
	e.metrics.Reconciled(source, "applied")
	logctx.FromCtx(ctx, e.log).Infow("purchase_reconciled",
		"source", source,
		"purchase_id", row.ID,
		"payment_id", row.GetPaymentID(),
		"status", row.Status,
	)
	return row, nil
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, ErrMalformedCallback):
		return "malformed_reference"
	case errors.Is(err, ErrNotFound):
		return "unknown_purchase"
	default:
		return "error"
	}
}

func (e *Engine) record(ctx context.Context, source models.PaymentNotificationSource, userID *string, paymentID string, purchaseID uint64, data, result any, err error) {
	raw, mErr := json.Marshal(data)
	if mErr != nil {
		raw = []byte("{}")
	}
	e.recordRaw(ctx, source, userID, paymentID, purchaseID, raw, result, err)
}

func (e *Engine) recordRaw(ctx context.Context, source models.PaymentNotificationSource, userID *string, paymentID string, purchaseID uint64, raw []byte, result any, err error) {
	if e.notes == nil {
		return
	}
	entry := &models.PaymentNotificationLog{
		ProviderID:       string(types.PaymentProviderMercadoPago),
		Source:           source,
		UserID:           userID,
		TraceID:          logctx.TraceID(ctx),
		TransactionID:    paymentID,
		NotificationTime: time.Now(),
		Data:             datatypes.JSON(raw),
		Status:           models.PaymentNotificationLogStatusHandled,
	}
	if purchaseID != 0 {
		entry.PurchaseID = lo.ToPtr(purchaseID)
	}
	if err != nil {
		entry.Status = models.PaymentNotificationLogStatusHandleFailed
	}
	if b, mErr := json.Marshal(map[string]any{"result": result, "error": errString(err)}); mErr == nil {
		entry.Result = lo.ToPtr(datatypes.JSON(b))
	}
	e.notes.Save(ctx, entry)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
