package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/internal/app/service/catalog"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/internal/platform/mercadopago"
	"github.com/fatflowers/notemarket/pkg/logctx"
	"github.com/fatflowers/notemarket/pkg/metrics"
	"github.com/fatflowers/notemarket/pkg/tool"
	"github.com/fatflowers/notemarket/pkg/types"
)

// Manager is what the HTTP layer and the reaper depend on.
type Manager interface {
	Initiate(ctx context.Context, buyer *types.Identity, documentID uint64) (*InitiateResult, error)
	HandleReturn(ctx context.Context, p ReturnParams) *ReturnResult
	HandleNotification(ctx context.Context, p NotificationParams) *NotificationResult
	SyncPurchase(ctx context.Context, purchaseID uint64) (*SyncResult, error)
}

type InitiateKind string

const (
	// InitiateFree means no purchase is needed; send the buyer to the download.
	InitiateFree     InitiateKind = "free"
	InitiateCheckout InitiateKind = "checkout"
)

type InitiateResult struct {
	Kind           InitiateKind
	DocumentID     uint64
	PurchaseID     uint64
	CheckoutURL    string
	FundedBy       types.FundingSource
	MarketplaceFee decimal.Decimal
	Notice         types.Notice
}

// Engine runs purchase initiation and reconciliation.
type Engine struct {
	settings Settings
	ledger   PurchaseLedger
	links    MerchantLinks
	catalog  Catalog
	provider Provider
	notes    NotificationRecorder
	metrics  *metrics.Business
	log      *zap.SugaredLogger
}

var _ Manager = (*Engine)(nil)

func NewEngine(settings Settings, ledger PurchaseLedger, links MerchantLinks, catalog Catalog, provider Provider, notes NotificationRecorder, m *metrics.Business, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{
		settings: settings,
		ledger:   ledger,
		links:    links,
		catalog:  catalog,
		provider: provider,
		notes:    notes,
		metrics:  m,
		log:      log,
	}
}

// Initiate starts a purchase of documentID by buyer. For paid documents a
// pending purchase is written before the provider is called; if the
// provider fails the row stays pending and the returned error wraps
// ErrProvider while the result still carries the purchase id.
func (e *Engine) Initiate(ctx context.Context, buyer *types.Identity, documentID uint64) (*InitiateResult, error) {
	if !buyer.Authenticated() {
		return nil, fmt.Errorf("authentication required: %w", ErrForbidden)
	}
	doc, err := e.catalog.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("document %d: %w", documentID, ErrNotFound)
		}
		return nil, err
	}
	if !doc.IsActive {
		return nil, fmt.Errorf("document %d inactive: %w", documentID, ErrNotFound)
	}
	if buyer.Is(doc.SellerID) {
		return nil, ErrSelfPurchase
	}
	if doc.IsFree() {
		return &InitiateResult{Kind: InitiateFree, DocumentID: doc.ID}, nil
	}

	lg := logctx.FromCtx(ctx, e.log).With("document_id", doc.ID, "buyer_id", buyer.UserID)

	p := &models.Purchase{
		BuyerID:     buyer.UserID,
		DocumentID:  doc.ID,
		AmountCents: doc.PriceCents,
		Status:      types.PurchaseStatusPending,
	}
	if err := e.ledger.Create(ctx, p); err != nil {
		return nil, err
	}
	res := &InitiateResult{Kind: InitiateCheckout, DocumentID: doc.ID, PurchaseID: p.ID}

	token, linked, err := e.links.FundingCredential(ctx, doc.SellerID)
	if err != nil {
		return res, fmt.Errorf("resolve funding credential for seller %s: %w", doc.SellerID, err)
	}
	if linked {
		res.FundedBy = types.FundingSourceSeller
		res.MarketplaceFee = e.settings.MarketplaceFee(p.AmountCents)
	} else {
		token = e.settings.PlatformToken
		res.FundedBy = types.FundingSourcePlatform
		res.MarketplaceFee = decimal.Zero
		res.Notice = types.NoticeSellerNotLinked
	}

	ref := FormatReference(p.ID)
	back := e.settings.ReturnURL(doc.ID, p.ID)
	pref, err := e.provider.CreatePreference(ctx, token, &mercadopago.PreferenceRequest{
		Items: []mercadopago.Item{{
			Title:      doc.Title,
			Quantity:   1,
			UnitPrice:  tool.MinorToMajor(p.AmountCents),
			CurrencyID: e.settings.CurrencyID,
		}},
		MarketplaceFee:    res.MarketplaceFee,
		ExternalReference: ref,
		BackURLs:          mercadopago.BackURLs{Success: back, Failure: back, Pending: back},
		NotificationURL:   e.settings.NotificationURL(),
		AutoReturn:        "approved",
	})
	if err != nil {
		e.metrics.PurchaseInitiated(string(res.FundedBy), "provider_error")
		lg.Errorw("create_preference_failed", "purchase_id", p.ID, "funded_by", res.FundedBy, "err", err)
		res.Notice = types.NoticeProviderError
		return res, fmt.Errorf("create preference for purchase %d: %w", p.ID, err)
	}

	// The checkout already exists; a failed second write only loses the
	// preference id, and reconciliation still finds the row by reference.
	if err := e.ledger.AttachPreference(ctx, p.ID, pref.ID, tool.MajorToMinor(res.MarketplaceFee), res.FundedBy); err != nil {
		lg.Errorw("attach_preference_failed", "purchase_id", p.ID, "preference_id", pref.ID, "err", err)
	}

	res.CheckoutURL = pref.CheckoutURL()
	e.metrics.PurchaseInitiated(string(res.FundedBy), "checkout")
	lg.Infow("purchase_initiated",
		"purchase_id", p.ID,
		"preference_id", pref.ID,
		"funded_by", res.FundedBy,
		"marketplace_fee", res.MarketplaceFee.StringFixed(2),
	)
	return res, nil
}
