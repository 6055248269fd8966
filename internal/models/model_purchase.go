package models

import (
	"time"

	"github.com/fatflowers/notemarket/pkg/types"
)

// Purchase is one attempt by a buyer to pay for a document. Rows are
// created pending and only ever updated in place.
type Purchase struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BuyerID    string `gorm:"column:buyer_id;type:varchar(64);not null;index:idx_purchase_access,priority:1" json:"buyer_id"`
	DocumentID uint64 `gorm:"column:document_id;not null;index:idx_purchase_access,priority:2" json:"document_id"`
	// AmountCents is the document price snapshotted at initiation.
	AmountCents int64                `gorm:"column:amount_cents;type:bigint;not null" json:"amount_cents"`
	Status      types.PurchaseStatus `gorm:"column:status;type:varchar(64);not null;index:idx_purchase_access,priority:3" json:"status"`
	// PreferenceID is attached by a second write once the provider accepted the checkout.
	PreferenceID *string `gorm:"column:preference_id;type:varchar(128);default:null" json:"preference_id"`
	PaymentID    *string `gorm:"column:payment_id;type:varchar(128);default:null;index" json:"payment_id"`
	// MarketplaceFeeCents is the platform commission requested from the provider.
	MarketplaceFeeCents int64               `gorm:"column:marketplace_fee_cents;type:bigint;not null;default:0" json:"marketplace_fee_cents"`
	FundedBy            types.FundingSource `gorm:"column:funded_by;type:varchar(16)" json:"funded_by"`
	CreatedAt           time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func (Purchase) TableName() string {
	return "purchases"
}

func (p *Purchase) GetPaymentID() string {
	if p == nil || p.PaymentID == nil {
		return ""
	}
	return *p.PaymentID
}
