package settlement

import (
	"context"

	"github.com/fatflowers/notemarket/internal/app/service/ledger"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/internal/platform/mercadopago"
	"github.com/fatflowers/notemarket/pkg/types"
)

// PurchaseLedger is implemented by *ledger.Service.
type PurchaseLedger interface {
	Create(ctx context.Context, p *models.Purchase) error
	Get(ctx context.Context, id uint64) (*models.Purchase, error)
	AttachPreference(ctx context.Context, id uint64, preferenceID string, feeCents int64, fundedBy types.FundingSource) error
	ApplyPayment(ctx context.Context, id uint64, u ledger.PaymentUpdate) (*models.Purchase, error)
}

// MerchantLinks is implemented by *merchantlink.Service.
type MerchantLinks interface {
	FundingCredential(ctx context.Context, sellerID string) (token string, ok bool, err error)
}

// Catalog is implemented by *catalog.Service.
type Catalog interface {
	Get(ctx context.Context, id uint64) (*models.Document, error)
}

// Provider is implemented by *mercadopago.Client.
type Provider interface {
	CreatePreference(ctx context.Context, token string, req *mercadopago.PreferenceRequest) (*mercadopago.Preference, error)
	GetPayment(ctx context.Context, token, paymentID string) (*mercadopago.Payment, error)
	SearchPaymentsByExternalReference(ctx context.Context, token, ref string) (*mercadopago.PaymentSearch, error)
}

// NotificationRecorder is implemented by *notification_log.Service.
type NotificationRecorder interface {
	Save(ctx context.Context, log *models.PaymentNotificationLog)
}
