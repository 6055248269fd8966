package models

import (
	"time"
)

// MerchantLink stores a seller's connected provider account. Unlinking
// clears every credential field but keeps the row.
type MerchantLink struct {
	SellerID string `gorm:"column:seller_id;type:varchar(64);primaryKey" json:"seller_id"`
	// MPUserID is the provider-side account id.
	MPUserID     string     `gorm:"column:mp_user_id;type:varchar(64)" json:"mp_user_id"`
	AccessToken  string     `gorm:"column:access_token;type:text" json:"-"`
	RefreshToken string     `gorm:"column:refresh_token;type:text" json:"-"`
	ExpiresAt    *time.Time `gorm:"column:expires_at;default:null" json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (MerchantLink) TableName() string {
	return "merchant_links"
}

// Linked reports whether the seller has a funding credential at all.
func (m *MerchantLink) Linked() bool {
	return m != nil && m.AccessToken != ""
}

// Expired reports whether the access token is past its expiry at now.
// Links without a recorded expiry never expire.
func (m *MerchantLink) Expired(now time.Time) bool {
	return m != nil && m.ExpiresAt != nil && !now.Before(*m.ExpiresAt)
}
